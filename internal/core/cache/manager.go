package cache

import (
	"sync/atomic"
	"time"

	"quid-calculator/internal/infrastructure/config"
	"quid-calculator/internal/pkg/common"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

// Manager 程序內快取，帶過期時間的 LRU。
// 快取停用時 NewManager 回傳 nil，所有方法皆可安全地以 nil 呼叫。
type Manager[V any] struct {
	name    string
	maxSize int
	ttl     time.Duration
	lru     *expirable.LRU[string, V]

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// NewManager 創建快取管理器
func NewManager[V any](name string, cfg config.CacheConfig) *Manager[V] {
	if !cfg.Enabled {
		common.LogInfo("快取已停用", zap.String("名稱", name))
		return nil
	}

	m := &Manager[V]{
		name:    name,
		maxSize: cfg.MaxSize,
		ttl:     cfg.TTL,
	}
	m.lru = expirable.NewLRU[string, V](cfg.MaxSize, func(string, V) {
		m.evictions.Add(1)
	}, cfg.TTL)

	common.LogInfo("快取管理員已初始化",
		zap.String("名稱", name),
		zap.Int("最大容量", cfg.MaxSize),
		zap.Duration("存活時間", cfg.TTL),
	)
	return m
}

// Get 讀取快取
func (m *Manager[V]) Get(key string) (V, bool) {
	var zero V
	if m == nil {
		return zero, false
	}
	v, ok := m.lru.Get(key)
	if !ok {
		m.misses.Add(1)
		common.LogCacheMiss(m.name, key)
		return zero, false
	}
	m.hits.Add(1)
	common.LogCacheHit(m.name, key)
	return v, true
}

// Set 寫入快取
func (m *Manager[V]) Set(key string, value V) {
	if m == nil {
		return
	}
	m.lru.Add(key, value)
}

// Remove 移除單筆快取
func (m *Manager[V]) Remove(key string) {
	if m == nil {
		return
	}
	m.lru.Remove(key)
}

// Len 目前筆數（含尚未清除的過期項目）
func (m *Manager[V]) Len() int {
	if m == nil {
		return 0
	}
	return m.lru.Len()
}

// GetStats 獲取快取統計信息
func (m *Manager[V]) GetStats() map[string]interface{} {
	if m == nil {
		return map[string]interface{}{"enabled": false}
	}
	hits, misses := m.hits.Load(), m.misses.Load()
	ratio := 0.0
	if hits+misses > 0 {
		ratio = float64(hits) / float64(hits+misses)
	}
	return map[string]interface{}{
		"enabled":   true,
		"name":      m.name,
		"size":      m.lru.Len(),
		"max_size":  m.maxSize,
		"ttl":       m.ttl.String(),
		"hits":      hits,
		"misses":    misses,
		"evictions": m.evictions.Load(),
		"hit_ratio": ratio,
	}
}

// Close 清空快取
func (m *Manager[V]) Close() error {
	if m == nil {
		return nil
	}
	m.lru.Purge()
	common.LogInfo("快取管理員已關閉",
		zap.String("名稱", m.name),
		zap.Int64("命中次數", m.hits.Load()),
		zap.Int64("未命中次數", m.misses.Load()),
		zap.Int64("淘汰次數", m.evictions.Load()),
	)
	return nil
}
