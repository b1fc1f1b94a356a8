package api

import (
	"context"
	"errors"
	"time"

	"quid-calculator/internal/api/handlers/health"
	nutritionHandler "quid-calculator/internal/api/handlers/nutrition"
	quidHandler "quid-calculator/internal/api/handlers/quid"
	"quid-calculator/internal/api/middleware"
	"quid-calculator/internal/core/cache"
	"quid-calculator/internal/core/declaration"
	"quid-calculator/internal/core/nutrition"
	"quid-calculator/internal/core/queue"
	"quid-calculator/internal/core/quid"
	"quid-calculator/internal/infrastructure/config"
	"quid-calculator/internal/metrics"
	"quid-calculator/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Dependencies 路由所需的服務；除 Declaration 外皆可為 nil
type Dependencies struct {
	Declaration *declaration.Service
	Nutrition   *nutrition.Client
	Results     *cache.Manager[*quid.QuidResult]
	Products    *cache.Manager[*nutrition.Product]
	Shared      *cache.RedisStore
	Queue       *queue.Manager
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	if deps.Declaration == nil {
		return nil, errors.New("declaration service is required")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.NoRoute(func(c *gin.Context) {
		c.JSON(common.ErrNotFound.Status, common.ErrNotFound.Response(nil))
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(common.ErrMethodNotAllowed.Status, common.ErrMethodNotAllowed.Response(nil))
	})

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New(requestid.WithGenerator(common.GenerateUUID)))
	router.Use(metrics.Middleware())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	// 請求超時
	timeout := cfg.Server.RequestTimeout
	router.Use(func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeout),
			)
			c.AbortWithStatusJSON(common.ErrGatewayTimeout.Status,
				common.ErrGatewayTimeout.Response(gin.H{"timeout": timeout.String()}))
		}
	})

	// 健康檢查路由
	healthHandler := health.NewHandler(cfg.App.Version, map[string]health.StatsProvider{
		"results":  deps.Results,
		"products": deps.Products,
	}, deps.Shared, deps.Queue)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API 路由組
	api := router.Group("/api/v1")
	{
		quidHandlerInstance := quidHandler.NewHandler(deps.Declaration)

		quidGroup := api.Group("/quid")
		if cfg.DedupWindow > 0 {
			quidGroup.Use(middleware.Deduplication(cfg.DedupWindow))
		}
		{
			quidGroup.POST("/calculate", quidHandlerInstance.HandleCalculate)
			quidGroup.POST("/batch", quidHandlerInstance.HandleBatch)
			quidGroup.GET("/species", quidHandlerInstance.HandleSpecies)
		}

		nutritionHandlerInstance := nutritionHandler.NewHandler(deps.Nutrition)
		api.GET("/nutrition/:barcode", nutritionHandlerInstance.HandleLookup)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("dedup_window", cfg.DedupWindow),
		zap.Bool("nutrition_lookup", deps.Nutrition.Enabled()),
		zap.Bool("shared_cache", deps.Shared.Enabled()),
		zap.Duration("timeout", timeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router, nil
}
