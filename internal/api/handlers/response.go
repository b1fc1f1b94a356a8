package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"quid-calculator/internal/core/queue"
	"quid-calculator/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BindJSON 以嚴格模式解析請求體；失敗時已寫入錯誤回應
func BindJSON(c *gin.Context, v interface{}) bool {
	if c.Request.Body == nil {
		RespondError(c, common.NewValidationError("request body is required"))
		return false
	}
	if err := common.DecodeJSONStrict(c.Request.Body, v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			RespondError(c, common.ErrRequestTooLarge.WithError(err))
			return false
		}
		if errors.Is(err, io.EOF) {
			RespondError(c, common.NewValidationError("request body is required"))
			return false
		}
		RespondError(c, common.NewValidationErrorWithDetails("Invalid request format",
			map[string]string{"body": err.Error()}))
		return false
	}
	return true
}

// RespondError 將錯誤轉為 {"error","code","details"} 回應
func RespondError(c *gin.Context, err error) {
	requestID := c.Writer.Header().Get("X-Request-ID")

	if ve, ok := common.AsValidationError(err); ok {
		body := common.ErrInvalidRequest.Response(nil)
		body.Message = ve.Error()
		if len(ve.Details) > 0 {
			body.Details = ve.Details
		}
		c.AbortWithStatusJSON(common.ErrInvalidRequest.Status, body)
		return
	}

	var ce *common.CustomError
	switch {
	case errors.As(err, &ce):
	case errors.Is(err, queue.ErrQueueFull), errors.Is(err, queue.ErrQueueClosed):
		ce = common.ErrQueueFull.WithError(err)
	case errors.Is(err, context.DeadlineExceeded):
		ce = common.ErrGatewayTimeout.WithError(err)
	case errors.Is(err, context.Canceled):
		ce = common.ErrRequestTimeout.WithError(err)
	default:
		ce = common.ErrInternalError.WithError(err)
	}

	if ce.Status >= http.StatusInternalServerError {
		common.LogError("請求處理失敗",
			zap.Error(err),
			zap.String("code", ce.Code),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", requestID),
		)
	}

	c.AbortWithStatusJSON(ce.Status, ce.Response(nil))
}
