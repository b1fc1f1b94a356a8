package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"quid-calculator/internal/core/cache"
	"quid-calculator/internal/core/queue"
	"quid-calculator/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StatsProvider 提供快取統計
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                            `json:"status"`
	Timestamp time.Time                         `json:"timestamp"`
	Version   string                            `json:"version"`
	Runtime   map[string]interface{}            `json:"runtime"`
	Cache     map[string]map[string]interface{} `json:"cache"`
	Queue     *queue.Status                     `json:"queue,omitempty"`
}

// Handler 健康檢查處理程序
type Handler struct {
	version string
	caches  map[string]StatsProvider
	shared  *cache.RedisStore
	queue   *queue.Manager
}

// NewHandler 創建健康檢查處理程序；各依賴皆可為 nil
func NewHandler(version string, caches map[string]StatsProvider, shared *cache.RedisStore, q *queue.Manager) *Handler {
	return &Handler{
		version: version,
		caches:  caches,
		shared:  shared,
		queue:   q,
	}
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
		Cache: make(map[string]map[string]interface{}, len(h.caches)),
	}
	for name, provider := range h.caches {
		response.Cache[name] = provider.GetStats()
	}
	response.Cache["redis"] = map[string]interface{}{"enabled": h.shared.Enabled()}

	if h.queue != nil {
		status := h.queue.Status()
		response.Queue = &status
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 共用快取可連線時才就緒
func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.shared.Ping(ctx); err != nil {
		common.LogWarn("Redis 無法連線", zap.Error(err))
		c.JSON(common.ErrServiceUnavailable.Status,
			common.ErrServiceUnavailable.Response(gin.H{"status": "not_ready", "redis": err.Error()}))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
