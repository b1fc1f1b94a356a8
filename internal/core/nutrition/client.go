package nutrition

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"quid-calculator/internal/core/cache"
	"quid-calculator/internal/infrastructure/config"
	"quid-calculator/internal/metrics"
	"quid-calculator/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var (
	// ErrProductNotFound 查無此條碼
	ErrProductNotFound = errors.New("product not found")
	// ErrLookupDisabled 未啟用 Open Food Facts 查詢
	ErrLookupDisabled = errors.New("nutrition lookup disabled")
)

// Client Open Food Facts 客戶端
type Client struct {
	enabled bool
	http    *resty.Client
	cache   *cache.Manager[*Product]
}

// NewClient 創建客戶端；productCache 可為 nil
func NewClient(cfg config.OpenFoodFactsConfig, productCache *cache.Manager[*Product]) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", cfg.UserAgent)

	return &Client{
		enabled: cfg.Enabled,
		http:    client,
		cache:   productCache,
	}
}

// Enabled 是否啟用
func (c *Client) Enabled() bool {
	return c != nil && c.enabled
}

// LookupBarcode 以 EAN/UPC 條碼查詢商品營養資料
func (c *Client) LookupBarcode(ctx context.Context, code string) (*Product, error) {
	if !c.Enabled() {
		return nil, ErrLookupDisabled
	}

	code = strings.TrimSpace(code)
	if !validBarcode(code) {
		return nil, common.NewValidationErrorWithDetails("invalid barcode",
			map[string]string{"barcode": "must be 8 to 14 digits"})
	}

	if p, ok := c.cache.Get(code); ok {
		metrics.NutritionLookupsTotal.WithLabelValues(metrics.ResultHit).Inc()
		return p, nil
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("code", code).
		Get("/api/v2/product/{code}.json")
	if err != nil {
		metrics.NutritionLookupsTotal.WithLabelValues(metrics.ResultError).Inc()
		return nil, fmt.Errorf("failed to query open food facts: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusNotFound:
		metrics.NutritionLookupsTotal.WithLabelValues(metrics.ResultNotFound).Inc()
		return nil, ErrProductNotFound
	default:
		metrics.NutritionLookupsTotal.WithLabelValues(metrics.ResultError).Inc()
		return nil, fmt.Errorf("open food facts returned status %d", resp.StatusCode())
	}

	var payload offResponse
	if err := common.ParseJSONBytes(resp.Body(), &payload); err != nil {
		metrics.NutritionLookupsTotal.WithLabelValues(metrics.ResultError).Inc()
		return nil, fmt.Errorf("failed to parse open food facts response: %w", err)
	}
	if payload.Status == 0 || payload.Product == nil {
		metrics.NutritionLookupsTotal.WithLabelValues(metrics.ResultNotFound).Inc()
		return nil, ErrProductNotFound
	}

	product := payload.Product.toProduct(code)
	c.cache.Set(code, product)
	metrics.NutritionLookupsTotal.WithLabelValues(metrics.ResultFound).Inc()

	common.LogInfo("營養資料查詢成功",
		zap.String("barcode", code),
		zap.String("product", product.Name),
		zap.Int("allergens", len(product.Allergens)),
	)
	return product, nil
}

func validBarcode(code string) bool {
	if len(code) < 8 || len(code) > 14 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
