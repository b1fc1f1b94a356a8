package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"quid-calculator/internal/core/quid"
	"quid-calculator/internal/infrastructure/config"
	"quid-calculator/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const resultKeyPrefix = "quid:result:"

// ErrCacheMiss 共用快取中沒有此結果
var ErrCacheMiss = errors.New("cache miss")

// RedisStore 多個實例共用的計算結果快取
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore 創建 Redis 快取；停用時回傳不連線的空實例
func NewRedisStore(ctx context.Context, cfg config.RedisConfig, ttl time.Duration) (*RedisStore, error) {
	if !cfg.Enabled {
		return &RedisStore{ttl: ttl}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 3 * time.Second,
	})

	// 測試連接
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("Redis 快取已連線", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return &RedisStore{client: client, ttl: ttl}, nil
}

// Enabled 是否已連線
func (s *RedisStore) Enabled() bool {
	return s != nil && s.client != nil
}

// ResultKey 由請求摘要產生 Redis 鍵
func ResultKey(hash string) string {
	return resultKeyPrefix + hash
}

// Get 讀取計算結果
func (s *RedisStore) Get(ctx context.Context, hash string) (*quid.QuidResult, error) {
	if !s.Enabled() {
		return nil, ErrCacheMiss
	}

	data, err := s.client.Get(ctx, ResultKey(hash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}

	var result quid.QuidResult
	if err := common.ParseJSONBytes(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache: %w", err)
	}
	return &result, nil
}

// Set 寫入計算結果
func (s *RedisStore) Set(ctx context.Context, hash string, result *quid.QuidResult) error {
	if !s.Enabled() || result == nil {
		return nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := s.client.Set(ctx, ResultKey(hash), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Ping 就緒檢查用
func (s *RedisStore) Ping(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	return s.client.Ping(ctx).Err()
}

// Close 關閉連線
func (s *RedisStore) Close() error {
	if !s.Enabled() {
		return nil
	}
	return s.client.Close()
}
