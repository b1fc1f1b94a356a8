package declaration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"quid-calculator/internal/core/cache"
	"quid-calculator/internal/core/queue"
	"quid-calculator/internal/core/quid"
	"quid-calculator/internal/infrastructure/config"
	"quid-calculator/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fatBelly() Request {
	fat := 40.0
	return Request{
		Ingredients: []quid.Ingredient{
			{Name: "Schweinebauch", RawMass: 10, QuidRequired: true, IsMeat: true, MeatSpecies: "pork",
				Nutrition: &quid.NutritionInput{Fat: &fat}},
		},
		LossType: "none",
	}
}

func newTestService(t *testing.T, q *queue.Manager) *Service {
	t.Helper()
	results := cache.NewManager[*quid.QuidResult]("results", config.CacheConfig{Enabled: true, MaxSize: 100, TTL: time.Minute})
	return NewService(results, nil, q)
}

func TestCalculate(t *testing.T) {
	svc := newTestService(t, nil)

	res, err := svc.Calculate(context.Background(), fatBelly())
	require.NoError(t, err)

	require.Len(t, res.Ingredients, 2)
	assert.Equal(t, "Schweinefleisch (85,7%), Schweinespeck", res.LabelText)
	assert.Len(t, res.Warnings, 1)
}

func TestCalculate_CachesByRequest(t *testing.T) {
	svc := newTestService(t, nil)

	first, err := svc.Calculate(context.Background(), fatBelly())
	require.NoError(t, err)
	second, err := svc.Calculate(context.Background(), fatBelly())
	require.NoError(t, err)
	assert.Same(t, first, second)

	// 空字串與 drying 視為同一種損耗類型
	dry := fatBelly()
	dry.LossType = ""
	third, err := svc.Calculate(context.Background(), dry)
	require.NoError(t, err)
	assert.NotSame(t, first, third)

	dry.LossType = "drying"
	fourth, err := svc.Calculate(context.Background(), dry)
	require.NoError(t, err)
	assert.Same(t, third, fourth)

	stats := svc.results.GetStats()
	assert.Equal(t, int64(2), stats["hits"])
}

func TestCalculate_WithoutCache(t *testing.T) {
	svc := NewService(nil, nil, nil)

	first, err := svc.Calculate(context.Background(), fatBelly())
	require.NoError(t, err)
	second, err := svc.Calculate(context.Background(), fatBelly())
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, first, second)
}

func TestCalculate_Validation(t *testing.T) {
	svc := newTestService(t, nil)

	tests := []struct {
		name  string
		req   Request
		field string
	}{
		{
			name:  "empty ingredient list",
			req:   Request{},
			field: "ingredients",
		},
		{
			name:  "negative mass",
			req:   Request{Ingredients: []quid.Ingredient{{Name: "Salz", RawMass: -1}}},
			field: "ingredients[0].rawMass",
		},
		{
			name: "negative mass in sub-recipe",
			req: Request{Ingredients: []quid.Ingredient{{
				Name: "Brät", RawMass: 1, IsRecipe: true,
				OriginalSubIngredients: []quid.Ingredient{{Name: "Eis", RawMass: -2}},
			}}},
			field: "ingredients[0].originalSubIngredients[0].rawMass",
		},
		{
			name:  "missing name",
			req:   Request{Ingredients: []quid.Ingredient{{RawMass: 1}}},
			field: "ingredients[0].name",
		},
		{
			name:  "process loss above 100",
			req:   Request{Ingredients: []quid.Ingredient{{Name: "Salz", RawMass: 1}}, ProcessLoss: 120},
			field: "processLoss",
		},
		{
			name:  "connective tissue above 100",
			req:   Request{Ingredients: []quid.Ingredient{{Name: "Rind", RawMass: 1, ConnectiveTissue: 101}}},
			field: "ingredients[0].connectiveTissue",
		},
		{
			name:  "unknown loss type",
			req:   Request{Ingredients: []quid.Ingredient{{Name: "Salz", RawMass: 1}}, LossType: "smoking"},
			field: "lossType",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Calculate(context.Background(), tt.req)
			require.Error(t, err)
			ve, ok := common.AsValidationError(err)
			require.True(t, ok)
			assert.Contains(t, ve.Details, tt.field)
		})
	}
}

func TestCalculate_CancelledContext(t *testing.T) {
	svc := newTestService(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Calculate(ctx, fatBelly())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCalculateBatch_PreservesOrder(t *testing.T) {
	q := queue.NewManager(config.QueueConfig{Workers: 4, MaxSize: 10})
	defer q.Close()
	svc := newTestService(t, q)

	var reqs []Request
	for i := 1; i <= 6; i++ {
		reqs = append(reqs, Request{
			Ingredients: []quid.Ingredient{
				{Name: "Mehl", RawMass: float64(i)},
				{Name: "Salz", RawMass: 1},
			},
			LossType: "none",
		})
	}
	reqs[3] = Request{Ingredients: []quid.Ingredient{{Name: "Mehl", RawMass: -1}}}

	items, err := svc.CalculateBatch(context.Background(), reqs)
	require.NoError(t, err)
	require.Len(t, items, 6)

	for i, item := range items {
		assert.Equal(t, i, item.Index)
		if i == 3 {
			assert.Nil(t, item.Result)
			assert.Contains(t, item.Error, "ingredients[0].rawMass")
			continue
		}
		require.Empty(t, item.Error)
		assert.InDelta(t, float64(i+2), item.Result.TotalEndWeight, 1e-9)
	}
}

func TestCalculateBatch_LargerThanQueue(t *testing.T) {
	q := queue.NewManager(config.QueueConfig{Workers: 1, MaxSize: 2})
	defer q.Close()
	svc := NewService(nil, nil, q)

	reqs := make([]Request, 20)
	for i := range reqs {
		reqs[i] = Request{Ingredients: []quid.Ingredient{{Name: "Mehl", RawMass: float64(i + 1)}}}
	}

	items, err := svc.CalculateBatch(context.Background(), reqs)
	require.NoError(t, err)
	for i, item := range items {
		require.Empty(t, item.Error, i)
		assert.InDelta(t, float64(i+1), item.Result.TotalRawMass, 1e-9)
	}
}

func TestCalculateBatch_SizeLimits(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.CalculateBatch(context.Background(), nil)
	assert.True(t, common.IsValidationError(err))

	_, err = svc.CalculateBatch(context.Background(), make([]Request, MaxBatchSize+1))
	assert.True(t, common.IsValidationError(err))
}

func TestCalculateBatch_WithoutQueue(t *testing.T) {
	svc := newTestService(t, nil)

	items, err := svc.CalculateBatch(context.Background(), []Request{fatBelly(), {}})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.NotNil(t, items[0].Result)
	assert.Contains(t, items[1].Error, "ingredients")
}

func TestCalculateBatch_ClosedQueue(t *testing.T) {
	q := queue.NewManager(config.QueueConfig{Workers: 1, MaxSize: 2})
	q.Close()
	svc := newTestService(t, q)

	_, err := svc.CalculateBatch(context.Background(), []Request{fatBelly()})
	assert.ErrorIs(t, err, queue.ErrQueueClosed)
}

func TestJobOutcome(t *testing.T) {
	want := &quid.QuidResult{TotalRawMass: 1}
	got, err := jobOutcome(queue.Result{Value: want})
	require.NoError(t, err)
	assert.Same(t, want, got)

	// worker 攔下的 panic 轉為計算失敗
	_, err = jobOutcome(queue.Result{Err: fmt.Errorf("%w: boom", queue.ErrJobPanicked)})
	var ce *common.CustomError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, common.ErrCalculationFailed.Code, ce.Code)
	assert.ErrorIs(t, err, queue.ErrJobPanicked)

	_, err = jobOutcome(queue.Result{Value: "unexpected"})
	assert.Equal(t, common.ErrCalculationFailed, err)

	_, err = jobOutcome(queue.Result{Err: context.Canceled})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSpecies(t *testing.T) {
	svc := newTestService(t, nil)
	limits := svc.Species()
	require.NotEmpty(t, limits)
	assert.Equal(t, quid.SpeciesPork, limits[0].Species)
}

func TestWarningKind(t *testing.T) {
	assert.Equal(t, "fat", warningKind("Schwein: Fettgehalt 40,0 % überschreitet den Grenzwert"))
	assert.Equal(t, "connective_tissue", warningKind("Rind: Bindegewebsanteil 30,0 %"))
	assert.Equal(t, "nesting", warningKind("Teilrezept \"X\" überschreitet die maximale Verschachtelungstiefe"))
	assert.Equal(t, "other", warningKind("?"))
}
