package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"quid-calculator/internal/infrastructure/config"
	"quid-calculator/internal/pkg/common"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull 隊列已滿，呼叫端應稍後重試
	ErrQueueFull = errors.New("queue is full")
	// ErrQueueClosed 隊列已關閉
	ErrQueueClosed = errors.New("queue manager is closed")
	// ErrJobPanicked 工作執行時 panic
	ErrJobPanicked = errors.New("job panicked")
)

// Job 在 worker 中執行的工作
type Job func(ctx context.Context) (interface{}, error)

// Result 處理結果
type Result struct {
	Value interface{}
	Err   error
}

// request 隊列請求
type request struct {
	ctx    context.Context
	job    Job
	result chan Result
}

// Status 隊列狀態
type Status struct {
	QueueLength    int   `json:"queue_length"`
	ProcessedCount int64 `json:"processed_count"`
	FailedCount    int64 `json:"failed_count"`
	MaxQueueSize   int   `json:"max_queue_size"`
	Workers        int   `json:"workers"`
}

// Manager 固定數量 worker 的有界隊列
type Manager struct {
	workers   int
	maxSize   int
	queue     chan *request
	processed atomic.Int64
	failed    atomic.Int64

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewManager 創建隊列並啟動 worker
func NewManager(cfg config.QueueConfig) *Manager {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = 1
	}

	m := &Manager{
		workers: workers,
		maxSize: maxSize,
		queue:   make(chan *request, maxSize),
	}
	for i := 0; i < workers; i++ {
		m.wg.Add(1)
		go m.worker(i)
	}

	common.LogInfo("計算隊列已啟動",
		zap.Int("workers", workers),
		zap.Int("max_queue_size", maxSize),
	)
	return m
}

// Enqueue 將工作加入隊列；隊列滿時立即回傳 ErrQueueFull
func (m *Manager) Enqueue(ctx context.Context, job Job) (<-chan Result, error) {
	if job == nil {
		return nil, fmt.Errorf("nil job")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrQueueClosed
	}

	req := &request{
		ctx:    ctx,
		job:    job,
		result: make(chan Result, 1),
	}

	select {
	case m.queue <- req:
		common.LogDebug("Request enqueued",
			zap.Int("queue_length", len(m.queue)),
			zap.Int("max_queue_size", m.maxSize),
		)
		return req.result, nil
	default:
		common.LogWarn("計算隊列已滿", zap.Int("max_queue_size", m.maxSize))
		return nil, ErrQueueFull
	}
}

func (m *Manager) worker(id int) {
	defer m.wg.Done()
	for req := range m.queue {
		// 排隊期間呼叫端已放棄
		if err := req.ctx.Err(); err != nil {
			m.failed.Add(1)
			req.result <- Result{Err: err}
			continue
		}

		value, err := m.run(req)
		m.processed.Add(1)
		if err != nil {
			m.failed.Add(1)
			common.LogDebug("Job failed", zap.Int("worker", id), zap.Error(err))
		}
		req.result <- Result{Value: value, Err: err}
	}
}

// run 執行工作並將 panic 轉為錯誤，避免 worker 結束
func (m *Manager) run(req *request) (value interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			common.LogError("Job panic recovered", zap.Any("error", r))
			err = fmt.Errorf("%w: %v", ErrJobPanicked, r)
		}
	}()
	return req.job(req.ctx)
}

// Status 獲取隊列狀態
func (m *Manager) Status() Status {
	return Status{
		QueueLength:    len(m.queue),
		ProcessedCount: m.processed.Load(),
		FailedCount:    m.failed.Load(),
		MaxQueueSize:   m.maxSize,
		Workers:        m.workers,
	}
}

// Close 停止接收新工作，等待已排隊的工作完成
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	close(m.queue)
	m.mu.Unlock()

	m.wg.Wait()
	common.LogInfo("計算隊列已關閉", zap.Int64("processed", m.processed.Load()))
}
