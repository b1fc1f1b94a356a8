package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quid-calculator/internal/api"
	"quid-calculator/internal/core/cache"
	"quid-calculator/internal/core/declaration"
	"quid-calculator/internal/core/nutrition"
	"quid-calculator/internal/core/queue"
	"quid-calculator/internal/core/quid"
	"quid-calculator/internal/infrastructure/config"
	"quid-calculator/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("env", cfg.App.Env),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.Bool("openfoodfacts_enabled", cfg.OpenFoodFacts.Enabled),
		zap.Int("queue_workers", cfg.Queue.Workers),
	)

	// 初始化快取
	results := cache.NewManager[*quid.QuidResult]("results", cfg.Cache)
	defer results.Close()
	products := cache.NewManager[*nutrition.Product]("products", cfg.Cache)
	defer products.Close()

	// Redis 只在啟用時連線；連線失敗不阻止啟動
	redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
	shared, err := cache.NewRedisStore(redisCtx, cfg.Redis, cfg.Cache.TTL)
	redisCancel()
	if err != nil {
		common.LogWarn("Redis 初始化失敗，改用本機快取", zap.Error(err))
		shared = nil
	}
	defer func() {
		if err := shared.Close(); err != nil {
			common.LogWarn("Failed to close redis", zap.Error(err))
		}
	}()

	// 初始化計算隊列
	q := queue.NewManager(cfg.Queue)

	router, err := api.SetupRouter(cfg, api.Dependencies{
		Declaration: declaration.NewService(results, shared, q),
		Nutrition:   nutrition.NewClient(cfg.OpenFoodFacts, products),
		Results:     results,
		Products:    products,
		Shared:      shared,
		Queue:       q,
	})
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	// 伺服器停止後再排空隊列
	q.Close()

	common.LogInfo("Server exited")
}
