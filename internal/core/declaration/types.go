package declaration

import "quid-calculator/internal/core/quid"

// MaxBatchSize 單次批次計算的請求上限
const MaxBatchSize = 100

// Request 一次 QUID 計算
type Request struct {
	Ingredients []quid.Ingredient `json:"ingredients" validate:"required,min=1,dive"`
	ProcessLoss float64           `json:"processLoss" validate:"gte=0,lte=100"`
	FatLoss     float64           `json:"fatLoss" validate:"gte=0,lte=100"`
	LossType    string            `json:"lossType" validate:"omitempty,oneof=drying cooking none"`
}

// BatchRequest 批次計算；各筆請求在計算時個別驗證
type BatchRequest struct {
	Requests []Request `json:"requests" validate:"required,min=1,max=100"`
}

// BatchItem 批次中單筆結果；失敗時只有 Error
type BatchItem struct {
	Index  int              `json:"index"`
	Result *quid.QuidResult `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}
