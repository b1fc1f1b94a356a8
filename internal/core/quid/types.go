package quid

// Kind 原料型態：單一原料或子配方
type Kind int

const (
	KindLeaf Kind = iota
	KindCompound
)

// LossType 加工損耗類型
type LossType string

const (
	LossDrying  LossType = "drying"
	LossCooking LossType = "cooking"
	LossNone    LossType = "none"
)

// ParseLossType 解析損耗類型，未知值一律視為乾燥
func ParseLossType(s string) LossType {
	switch LossType(s) {
	case LossCooking:
		return LossCooking
	case LossNone:
		return LossNone
	default:
		return LossDrying
	}
}

// NutritionInput 每 100g 營養素（可能不完整）
type NutritionInput struct {
	EnergyKJ     *float64 `json:"energyKj,omitempty"`
	EnergyKcal   *float64 `json:"energyKcal,omitempty"`
	Fat          *float64 `json:"fat,omitempty"`
	SaturatedFat *float64 `json:"saturatedFat,omitempty"`
	Carbohydrate *float64 `json:"carbohydrate,omitempty"`
	Sugar        *float64 `json:"sugar,omitempty"`
	Protein      *float64 `json:"protein,omitempty"`
	Salt         *float64 `json:"salt,omitempty"`
	Water        *float64 `json:"water,omitempty"`
	Ash          *float64 `json:"ash,omitempty"`
}

// ResolvedNutrition 補齊後的每 100g 營養素
type ResolvedNutrition struct {
	Fat          float64
	SaturatedFat float64
	Carbohydrate float64
	Sugar        float64
	Protein      float64
	Salt         float64
	Water        float64
}

// Ingredient 配方原料，質量單位為公斤
type Ingredient struct {
	ID               string          `json:"id,omitempty"`
	Name             string          `json:"name" validate:"required"`
	LabelName        string          `json:"labelName,omitempty"`
	RawMass          float64         `json:"rawMass" validate:"gte=0"`
	QuidRequired     bool            `json:"quidRequired"`
	IsMeat           bool            `json:"isMeat"`
	MeatSpecies      string          `json:"meatSpecies,omitempty"`
	IsWater          bool            `json:"isWater,omitempty"`
	ConnectiveTissue float64         `json:"connectiveTissue,omitempty" validate:"gte=0,lte=100"`
	ProteinLimit     float64         `json:"proteinLimit,omitempty"`
	Nutrition        *NutritionInput `json:"nutrition,omitempty"`
	SubIngredients   string          `json:"subIngredients,omitempty"`
	ProcessingAids   string          `json:"processingAids,omitempty"`
	Allergens        []string        `json:"allergens,omitempty"`

	IsRecipe               bool         `json:"isRecipe,omitempty"`
	OriginalSubIngredients []Ingredient `json:"originalSubIngredients,omitempty" validate:"dive"`
	SubRecipeEndWeight     float64      `json:"subRecipeEndWeight,omitempty" validate:"gte=0"`
	ProcessLoss            float64      `json:"processLoss,omitempty" validate:"gte=0,lte=100"`
}

// Kind 回傳原料型態
func (i Ingredient) Kind() Kind {
	if i.IsRecipe && len(i.OriginalSubIngredients) > 0 {
		return KindCompound
	}
	return KindLeaf
}

// DisplayName 標示用名稱
func (i Ingredient) DisplayName() string {
	if i.LabelName != "" {
		return i.LabelName
	}
	return i.Name
}

// IngredientResult 申報清單中的一行
type IngredientResult struct {
	Ingredient
	QuidPercent    float64  `json:"quidPercent"`
	LabelText      string   `json:"labelText"`
	IsWaterLine    bool     `json:"isWaterLine,omitempty"`
	SplitFromMeat  bool     `json:"splitFromMeat,omitempty"`
	AggregatedFrom []string `json:"aggregatedFrom,omitempty"`
}

// Nutrition 成品每 100g 營養標示
type Nutrition struct {
	EnergyKJ     float64 `json:"energyKj"`
	EnergyKcal   float64 `json:"energyKcal"`
	Fat          float64 `json:"fat"`
	SaturatedFat float64 `json:"saturatedFat"`
	Carbohydrate float64 `json:"carbohydrate"`
	Sugar        float64 `json:"sugar"`
	Protein      float64 `json:"protein"`
	Salt         float64 `json:"salt"`
	Water        float64 `json:"water"`
}

// SourceAttribution 過敏原或加工助劑的來源原料
type SourceAttribution struct {
	Name    string   `json:"name"`
	Sources []string `json:"sources"`
}

// WaterBalance 水分收支（公斤）
type WaterBalance struct {
	AddedWater          float64 `json:"addedWater"`
	NaturalWater        float64 `json:"naturalWater"`
	WeightLoss          float64 `json:"weightLoss"`
	RemainingAddedWater float64 `json:"remainingAddedWater"`
	RetentionFactor     float64 `json:"retentionFactor"`
}

// QuidResult 計算結果
type QuidResult struct {
	TotalRawMass         float64             `json:"totalRawMass"`
	EffectiveInputMass   float64             `json:"effectiveInputMass"`
	TotalEndWeight       float64             `json:"totalEndWeight"`
	Ingredients          []IngredientResult  `json:"ingredients"`
	LabelText            string              `json:"labelText"`
	Warnings             []string            `json:"warnings"`
	Nutrition            Nutrition           `json:"nutrition"`
	Allergens            []string            `json:"allergens"`
	ProcessingAids       []string            `json:"processingAids"`
	AllergenSources      []SourceAttribution `json:"allergenSources"`
	ProcessingAidSources []SourceAttribution `json:"processingAidSources"`
	MeatPercent          float64             `json:"meatPercent"`
	Water                WaterBalance        `json:"water"`
}

func value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
