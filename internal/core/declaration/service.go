package declaration

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"quid-calculator/internal/core/cache"
	"quid-calculator/internal/core/queue"
	"quid-calculator/internal/core/quid"
	"quid-calculator/internal/metrics"
	"quid-calculator/internal/pkg/common"

	"go.uber.org/zap"
)

// Service QUID 申報計算服務。
// 回傳的 *quid.QuidResult 可能來自快取並被共用，呼叫端不可修改。
type Service struct {
	validator *Validator
	results   *cache.Manager[*quid.QuidResult]
	shared    *cache.RedisStore
	queue     *queue.Manager
}

// NewService 創建服務；results、shared、q 皆可為 nil
func NewService(results *cache.Manager[*quid.QuidResult], shared *cache.RedisStore, q *queue.Manager) *Service {
	return &Service{
		validator: GetValidator(),
		results:   results,
		shared:    shared,
		queue:     q,
	}
}

// Calculate 驗證請求後計算（或由快取取得）QUID 結果
func (s *Service) Calculate(ctx context.Context, req Request) (*quid.QuidResult, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lossType := quid.ParseLossType(req.LossType)
	req.LossType = string(lossType)

	key, err := common.HashJSON(req)
	if err != nil {
		return nil, fmt.Errorf("failed to hash request: %w", err)
	}

	if result, ok := s.results.Get(key); ok {
		metrics.CacheLookupsTotal.WithLabelValues(metrics.ResultHit).Inc()
		return result, nil
	}

	if s.shared.Enabled() {
		result, err := s.shared.Get(ctx, key)
		switch {
		case err == nil:
			metrics.CacheLookupsTotal.WithLabelValues(metrics.ResultHit).Inc()
			s.results.Set(key, result)
			return result, nil
		case !errors.Is(err, cache.ErrCacheMiss):
			metrics.CacheLookupsTotal.WithLabelValues(metrics.ResultError).Inc()
			common.LogWarn("共用快取讀取失敗", zap.Error(err))
		}
	}
	metrics.CacheLookupsTotal.WithLabelValues(metrics.ResultMiss).Inc()

	start := time.Now()
	result := quid.Calculate(req.Ingredients, req.ProcessLoss, req.FatLoss, lossType)
	elapsed := time.Since(start)

	metrics.CalculationsTotal.WithLabelValues(string(lossType)).Inc()
	metrics.CalculationDuration.Observe(elapsed.Seconds())
	for _, w := range result.Warnings {
		metrics.WarningsTotal.WithLabelValues(warningKind(w)).Inc()
	}
	common.LogCalculation(len(req.Ingredients), string(lossType), elapsed, len(result.Warnings))

	s.results.Set(key, &result)
	if err := s.shared.Set(ctx, key, &result); err != nil {
		common.LogWarn("共用快取寫入失敗", zap.Error(err))
	}
	return &result, nil
}

// CalculateBatch 經由計算隊列並行處理，結果依請求順序回傳。
// 單筆失敗只記錄在該筆的 Error，不影響其他請求。
func (s *Service) CalculateBatch(ctx context.Context, reqs []Request) ([]BatchItem, error) {
	if len(reqs) == 0 {
		return nil, common.NewValidationErrorWithDetails("invalid request",
			map[string]string{"requests": "Must contain at least 1 item(s)"})
	}
	if len(reqs) > MaxBatchSize {
		return nil, common.NewValidationErrorWithDetails("invalid request",
			map[string]string{"requests": fmt.Sprintf("Must contain at most %d item(s)", MaxBatchSize)})
	}

	items := make([]BatchItem, len(reqs))
	for i := range items {
		items[i].Index = i
	}

	if s.queue == nil {
		for i, req := range reqs {
			items[i].fill(s.Calculate(ctx, req))
		}
		return items, nil
	}

	type pending struct {
		index  int
		result <-chan queue.Result
	}
	var inFlight []pending

	collect := func(p pending) error {
		select {
		case res := <-p.result:
			items[p.index].fill(jobOutcome(res))
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for i, req := range reqs {
		req := req
		job := func(ctx context.Context) (interface{}, error) {
			return s.Calculate(ctx, req)
		}
		for {
			ch, err := s.queue.Enqueue(ctx, job)
			if err == nil {
				inFlight = append(inFlight, pending{index: i, result: ch})
				break
			}
			if !errors.Is(err, queue.ErrQueueFull) {
				return nil, err
			}
			// 隊列已滿：先等最早送出的一筆完成再重試
			if len(inFlight) == 0 {
				items[i].fill(nil, err)
				break
			}
			if err := collect(inFlight[0]); err != nil {
				return nil, err
			}
			inFlight = inFlight[1:]
		}
	}

	for _, p := range inFlight {
		if err := collect(p); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// Species 物種上限表
func (s *Service) Species() []quid.SpeciesLimit {
	return quid.Limits()
}

func (s *Service) validate(req Request) error {
	if err := s.validator.ValidateStruct(req); err != nil {
		return common.NewValidationErrorWithDetails("invalid request", FormatValidationError(err))
	}
	return nil
}

// jobOutcome 將隊列結果轉為計算結果；panic 與非預期的回傳值視為計算失敗
func jobOutcome(res queue.Result) (*quid.QuidResult, error) {
	if errors.Is(res.Err, queue.ErrJobPanicked) {
		return nil, common.ErrCalculationFailed.WithError(res.Err)
	}
	if res.Err != nil {
		return nil, res.Err
	}
	result, ok := res.Value.(*quid.QuidResult)
	if !ok || result == nil {
		return nil, common.ErrCalculationFailed
	}
	return result, nil
}

func (b *BatchItem) fill(result *quid.QuidResult, err error) {
	if err != nil {
		b.Error = err.Error()
		if ve, ok := common.AsValidationError(err); ok && len(ve.Details) > 0 {
			b.Error = formatDetails(ve.Details)
		}
		return
	}
	b.Result = result
}

func formatDetails(details map[string]string) string {
	parts := make([]string, 0, len(details))
	for field, msg := range details {
		parts = append(parts, field+": "+msg)
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

// warningKind 依警告內容分類，供 metrics 標籤使用
func warningKind(w string) string {
	switch {
	case strings.Contains(w, "Fettgehalt"):
		return metrics.WarningFat
	case strings.Contains(w, "Bindegewebsanteil"):
		return metrics.WarningConnectiveTissue
	case strings.Contains(w, "Verschachtelungstiefe"):
		return metrics.WarningNesting
	default:
		return "other"
	}
}
