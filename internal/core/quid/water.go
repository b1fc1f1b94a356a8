package quid

import (
	"regexp"
	"strings"
)

const (
	defaultMeatWater  = 75.0
	defaultOtherWater = 10.0
)

var (
	proteinKeywords = []string{
		"fleisch", "speck", "schwein", "rind", "kalb", "lamm", "huhn", "hähnchen",
		"pute", "geflügel", "leber", "protein", "eiweiß", "meat", "pork", "beef", "chicken",
	}
	waterKeywords = []string{"wasser", "trinkwasser", "schüttung", "water", "brühe"}
	// eis/ice 需整詞比對，避免誤判 Reis、Eisbein
	iceWordPattern = regexp.MustCompile(`(?i)(^|[^\p{L}])(eis|ice)([^\p{L}]|$)`)
)

// IsWaterIngredient 判斷原料是否為添加水
func IsWaterIngredient(ing Ingredient) bool {
	if ing.IsWater {
		return true
	}
	if ing.IsMeat {
		return false
	}
	name := strings.ToLower(ing.Name)
	for _, kw := range proteinKeywords {
		if strings.Contains(name, kw) {
			return false
		}
	}
	for _, kw := range waterKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return iceWordPattern.MatchString(name)
}

// NaturalWaterPercent 原料本身含水率：
// 有標示用標示值；有任何巨量營養素時以 100 減去乾物質估算；否則肉類 75%、其他 10%。
func NaturalWaterPercent(ing Ingredient) float64 {
	n := ing.Nutrition
	if n != nil && n.Water != nil {
		return clampPercent(*n.Water)
	}
	if n != nil && (n.Fat != nil || n.Protein != nil || n.Carbohydrate != nil || n.Salt != nil || n.Ash != nil) {
		dry := value(n.Fat) + value(n.Protein) + value(n.Carbohydrate) + value(n.Salt) + value(n.Ash)
		return clampPercent(100 - dry)
	}
	if ing.IsMeat {
		return defaultMeatWater
	}
	return defaultOtherWater
}

// WaterRetentionFactor 加工損耗優先由添加水承擔，回傳添加水保留比例
func WaterRetentionFactor(rawWater, totalRawMass, endWeight float64) float64 {
	if rawWater <= 0 {
		return 0
	}
	loss := nonNegative(totalRawMass - endWeight)
	remaining := nonNegative(rawWater - loss)
	return remaining / rawWater
}

// computeWaterBalance 以展開後的原料計算水分收支；
// 彙總後的物種行不帶營養資料，需用各部位自身的含水率。
func computeWaterBalance(flat []Ingredient, totalRawMass, endWeight float64) WaterBalance {
	var wb WaterBalance
	for _, ing := range flat {
		if IsWaterIngredient(ing) {
			wb.AddedWater += nonNegative(ing.RawMass)
			continue
		}
		wb.NaturalWater += nonNegative(ing.RawMass) * NaturalWaterPercent(ing) / 100
	}
	wb.WeightLoss = nonNegative(totalRawMass - endWeight)
	wb.RemainingAddedWater = nonNegative(wb.AddedWater - wb.WeightLoss)
	wb.RetentionFactor = WaterRetentionFactor(wb.AddedWater, totalRawMass, endWeight)
	return wb
}
