package nutrition

import (
	"errors"
	"net/http"
	"strconv"

	"quid-calculator/internal/api/handlers"
	"quid-calculator/internal/core/nutrition"
	"quid-calculator/internal/core/quid"
	"quid-calculator/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// Handler 條碼營養查詢處理程序
type Handler struct {
	client *nutrition.Client
}

// NewHandler 創建處理程序；client 可為 nil，此時一律回傳 503
func NewHandler(client *nutrition.Client) *Handler {
	return &Handler{client: client}
}

// LookupResponse 商品資料與可直接放入配方的原料
type LookupResponse struct {
	Product    *nutrition.Product `json:"product"`
	Ingredient quid.Ingredient    `json:"ingredient"`
}

// HandleLookup 以條碼查詢 Open Food Facts；rawMass 查詢參數為原料質量（公斤）
func (h *Handler) HandleLookup(c *gin.Context) {
	rawMass := 0.0
	if v := c.Query("rawMass"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed < 0 {
			handlers.RespondError(c, common.NewValidationErrorWithDetails("invalid request",
				map[string]string{"rawMass": "Must be a non-negative number"}))
			return
		}
		rawMass = parsed
	}

	product, err := h.client.LookupBarcode(c.Request.Context(), c.Param("barcode"))
	switch {
	case err == nil:
	case errors.Is(err, nutrition.ErrLookupDisabled):
		handlers.RespondError(c, common.ErrLookupDisabled.WithError(err))
		return
	case errors.Is(err, nutrition.ErrProductNotFound):
		handlers.RespondError(c, common.ErrProductNotFound.WithError(err))
		return
	case common.IsValidationError(err):
		handlers.RespondError(c, err)
		return
	default:
		handlers.RespondError(c, common.ErrUpstreamFailed.WithError(err))
		return
	}

	c.JSON(http.StatusOK, LookupResponse{
		Product:    product,
		Ingredient: product.Ingredient(rawMass),
	})
}
