package quid

import "sort"

// Calculate 計算 QUID 申報結果。
//
// 流程：展開子配方 → 依物種彙總並套用法定上限 → 質量平衡 → 水分與營養素損耗 → 成分表。
// 函式不修改輸入、不回傳錯誤；分母為 0 時相關數值為 0，法規問題以 Warnings 呈現。
func Calculate(ingredients []Ingredient, processLossPercent, fatLossPercent float64, lossType LossType) QuidResult {
	if lossType == LossNone {
		processLossPercent, fatLossPercent = 0, 0
	}
	processLoss := clampPercent(processLossPercent)
	fatLoss := clampPercent(fatLossPercent)

	flat, warnings := Flatten(ingredients)
	lines, speciesWarnings := AggregateSpecies(flat)
	warnings = append(warnings, speciesWarnings...)

	var totalRawMass float64
	for i := range lines {
		lines[i].IsWaterLine = IsWaterIngredient(lines[i].Ingredient)
		totalRawMass += nonNegative(lines[i].RawMass)
	}

	// 子配方自身的損耗在進入本配方前已發生
	var effectiveInputMass float64
	for _, ing := range ingredients {
		effectiveInputMass += nonNegative(ing.RawMass) * (1 - clampPercent(ing.ProcessLoss)/100)
	}
	totalEndWeight := effectiveInputMass * (1 - processLoss/100)

	water := computeWaterBalance(flat, totalRawMass, totalEndWeight)

	for i := range lines {
		line := &lines[i]
		mass := nonNegative(line.RawMass)
		if line.IsWaterLine {
			mass *= water.RetentionFactor
		}
		line.QuidPercent = percentOf(mass, totalEndWeight)
		line.LabelText = LabelFragment(*line)
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].QuidPercent > lines[j].QuidPercent
	})

	var meatPercent float64
	for _, line := range lines {
		if line.IsMeat && !line.SplitFromMeat {
			meatPercent += line.QuidPercent
		}
	}

	allergens, aids, allergenSources, aidSources := AggregateSources(ingredients)

	if lines == nil {
		lines = []IngredientResult{}
	}
	if warnings == nil {
		warnings = []string{}
	}

	return QuidResult{
		TotalRawMass:         totalRawMass,
		EffectiveInputMass:   effectiveInputMass,
		TotalEndWeight:       totalEndWeight,
		Ingredients:          lines,
		LabelText:            BuildLabel(lines),
		Warnings:             warnings,
		Nutrition:            ComputeNutrition(ingredients, processLoss, fatLoss, lossType, totalEndWeight),
		Allergens:            allergens,
		ProcessingAids:       aids,
		AllergenSources:      allergenSources,
		ProcessingAidSources: aidSources,
		MeatPercent:          meatPercent,
		Water:                water,
	}
}

func percentOf(mass, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return mass / total * 100
}
