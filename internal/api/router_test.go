package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quid-calculator/internal/core/cache"
	"quid-calculator/internal/core/declaration"
	"quid-calculator/internal/core/nutrition"
	"quid-calculator/internal/core/queue"
	"quid-calculator/internal/core/quid"
	"quid-calculator/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schinkenwurst = `{
  "code": "4012345678901",
  "status": 1,
  "product": {
    "product_name_de": "Schinkenwurst",
    "allergens_tags": ["en:celery"],
    "nutriments": {"fat_100g": 21, "proteins_100g": 15, "salt_100g": 2.1}
  }
}`

type testEnv struct {
	router *gin.Engine
	queue  *queue.Manager
}

func newTestEnv(t *testing.T, mutate func(*config.Config), client *nutrition.Client) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.App.Debug = true
	cfg.RateLimit.Enabled = false
	cfg.DedupWindow = 0
	if mutate != nil {
		mutate(cfg)
	}

	results := cache.NewManager[*quid.QuidResult]("results", cfg.Cache)
	q := queue.NewManager(cfg.Queue)
	t.Cleanup(q.Close)

	router, err := SetupRouter(cfg, Dependencies{
		Declaration: declaration.NewService(results, nil, q),
		Nutrition:   client,
		Results:     results,
		Queue:       q,
	})
	require.NoError(t, err)
	return &testEnv{router: router, queue: q}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestSetupRouter_RequiresService(t *testing.T) {
	_, err := SetupRouter(config.Default(), Dependencies{})
	assert.Error(t, err)
}

func TestCalculate(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	w := env.do(http.MethodPost, "/api/v1/quid/calculate", `{
		"ingredients": [
			{"name": "Schweinebauch", "rawMass": 10, "quidRequired": true, "isMeat": true,
			 "meatSpecies": "pork", "nutrition": {"fat": 40}}
		],
		"lossType": "none"
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var res quid.QuidResult
	decode(t, w, &res)
	assert.Equal(t, "Schweinefleisch (85,7%), Schweinespeck", res.LabelText)
	assert.InDelta(t, 10, res.TotalEndWeight, 1e-9)
	assert.Len(t, res.Warnings, 1)
}

func TestCalculate_ValidationEnvelope(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	w := env.do(http.MethodPost, "/api/v1/quid/calculate",
		`{"ingredients": [{"name": "Salz", "rawMass": -1}], "processLoss": 150}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Error   string            `json:"error"`
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	}
	decode(t, w, &body)
	assert.Equal(t, "INVALID_REQUEST", body.Code)
	assert.Contains(t, body.Details, "ingredients[0].rawMass")
	assert.Contains(t, body.Details, "processLoss")
}

func TestCalculate_MalformedBody(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{"ingredients":`},
		{"unknown field", `{"ingredients": [{"name": "Salz", "rawMass": 1}], "extra": true}`},
		{"trailing data", `{"ingredients": [{"name": "Salz", "rawMass": 1}]} {}`},
		{"empty", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/api/v1/quid/calculate", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "INVALID_REQUEST")
		})
	}
}

func TestCalculate_BodyTooLarge(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.Server.MaxBodyBytes = 16 }, nil)

	w := env.do(http.MethodPost, "/api/v1/quid/calculate", `{"ingredients": [{"name": "Salz", "rawMass": 1}]}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"REQUEST_TOO_LARGE"`)
}

func TestBatch(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	w := env.do(http.MethodPost, "/api/v1/quid/batch", `{"requests": [
		{"ingredients": [{"name": "Mehl", "rawMass": 2}], "lossType": "none"},
		{"ingredients": []},
		{"ingredients": [{"name": "Mehl", "rawMass": 4}], "processLoss": 50}
	]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Results []declaration.BatchItem `json:"results"`
	}
	decode(t, w, &body)
	require.Len(t, body.Results, 3)

	assert.InDelta(t, 2, body.Results[0].Result.TotalEndWeight, 1e-9)
	assert.Nil(t, body.Results[1].Result)
	assert.Contains(t, body.Results[1].Error, "ingredients")
	assert.Equal(t, 2, body.Results[2].Index)
	assert.InDelta(t, 2, body.Results[2].Result.TotalEndWeight, 1e-9)
}

func TestBatch_Empty(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	w := env.do(http.MethodPost, "/api/v1/quid/batch", `{"requests": []}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSpecies(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	w := env.do(http.MethodGet, "/api/v1/quid/species", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Species []quid.SpeciesLimit `json:"species"`
	}
	decode(t, w, &body)
	require.NotEmpty(t, body.Species)
	assert.Equal(t, quid.SpeciesPork, body.Species[0].Species)
	assert.Equal(t, 30.0, body.Species[0].MaxFat)
}

func TestNutrition_Disabled(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	w := env.do(http.MethodGet, "/api/v1/nutrition/4012345678901", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "LOOKUP_DISABLED")
}

func TestNutrition_Lookup(t *testing.T) {
	off := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/product/4012345678901.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(schinkenwurst))
		case "/api/v2/product/50000000.json":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer off.Close()

	client := nutrition.NewClient(config.OpenFoodFactsConfig{
		Enabled:   true,
		BaseURL:   off.URL,
		Timeout:   2 * time.Second,
		UserAgent: "quid-test/1.0",
	}, nil)
	env := newTestEnv(t, nil, client)

	w := env.do(http.MethodGet, "/api/v1/nutrition/4012345678901?rawMass=2.5", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Product    nutrition.Product `json:"product"`
		Ingredient quid.Ingredient   `json:"ingredient"`
	}
	decode(t, w, &body)
	assert.Equal(t, "Schinkenwurst", body.Product.Name)
	assert.Equal(t, []string{"celery"}, body.Ingredient.Allergens)
	assert.Equal(t, 2.5, body.Ingredient.RawMass)

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/v1/nutrition/11111111", "").Code)
	assert.Equal(t, http.StatusBadGateway, env.do(http.MethodGet, "/api/v1/nutrition/50000000", "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/v1/nutrition/abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/v1/nutrition/4012345678901?rawMass=-1", "").Code)
}

func TestDeduplication(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.DedupWindow = time.Minute }, nil)

	body := `{"ingredients": [{"name": "Salz", "rawMass": 1}]}`
	assert.Equal(t, http.StatusOK, env.do(http.MethodPost, "/api/v1/quid/calculate", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, env.do(http.MethodPost, "/api/v1/quid/calculate", body).Code)
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	w := env.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	var health struct {
		Status string                            `json:"status"`
		Cache  map[string]map[string]interface{} `json:"cache"`
		Queue  *queue.Status                     `json:"queue"`
	}
	decode(t, w, &health)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, true, health.Cache["results"]["enabled"])
	assert.Equal(t, false, health.Cache["products"]["enabled"])
	assert.Equal(t, false, health.Cache["redis"]["enabled"])
	require.NotNil(t, health.Queue)
	assert.Equal(t, 4, health.Queue.Workers)

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/ready", "").Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/live", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	env.do(http.MethodPost, "/api/v1/quid/calculate", `{"ingredients": [{"name": "Zucker", "rawMass": 3}]}`)

	w := env.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "quid_calculations_total")
	assert.Contains(t, w.Body.String(), `path="/api/v1/quid/calculate"`)
}

func TestUnknownRouteAndMethod(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	w := env.do(http.MethodGet, "/api/v1/unknown", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"NOT_FOUND"`)

	w = env.do(http.MethodGet, "/api/v1/quid/calculate", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"METHOD_NOT_ALLOWED"`)
}
