package quid

import (
	"net/http"

	"quid-calculator/internal/api/handlers"
	"quid-calculator/internal/core/declaration"
	"quid-calculator/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler QUID 計算處理程序
type Handler struct {
	service *declaration.Service
}

// NewHandler 創建新的 QUID 處理程序
func NewHandler(service *declaration.Service) *Handler {
	return &Handler{service: service}
}

// BatchResponse 批次計算回應
type BatchResponse struct {
	Results []declaration.BatchItem `json:"results"`
}

// HandleCalculate 計算單一配方
func (h *Handler) HandleCalculate(c *gin.Context) {
	var req declaration.Request
	if !handlers.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Calculate(c.Request.Context(), req)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// HandleBatch 批次計算，結果與請求順序一致
func (h *Handler) HandleBatch(c *gin.Context) {
	var req declaration.BatchRequest
	if !handlers.BindJSON(c, &req) {
		return
	}

	common.LogInfo("開始處理批次計算",
		zap.Int("requests", len(req.Requests)),
		zap.String("request_id", c.Writer.Header().Get("X-Request-ID")),
	)

	items, err := h.service.CalculateBatch(c.Request.Context(), req.Requests)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, BatchResponse{Results: items})
}

// HandleSpecies 物種脂肪與結締組織上限表
func (h *Handler) HandleSpecies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"species": h.service.Species()})
}
