package quid

// 蒸煮流失汁液的組成（以非脂肪損耗質量計）
const (
	juiceWater   = 0.93
	juiceProtein = 0.05
	juiceSalt    = 0.01
	juiceSugar   = 0.01
)

// 能量換算係數，每公克
const (
	kjPerFat       = 37.0
	kjPerProtein   = 17.0
	kjPerCarb      = 17.0
	kcalPerFat     = 9.0
	kcalPerProtein = 4.0
	kcalPerCarb    = 4.0
)

// ResolveNutrition 將不完整的營養資料補齊，含水率依 NaturalWaterPercent 估算；
// 添加水未標示含水率時視為 100%。
func ResolveNutrition(ing Ingredient) ResolvedNutrition {
	var r ResolvedNutrition
	if n := ing.Nutrition; n != nil {
		r.Fat = clampPercent(value(n.Fat))
		r.SaturatedFat = clampPercent(value(n.SaturatedFat))
		r.Carbohydrate = clampPercent(value(n.Carbohydrate))
		r.Sugar = clampPercent(value(n.Sugar))
		r.Protein = clampPercent(value(n.Protein))
		r.Salt = clampPercent(value(n.Salt))
	}
	if IsWaterIngredient(ing) && (ing.Nutrition == nil || ing.Nutrition.Water == nil) {
		r.Water = 100
	} else {
		r.Water = NaturalWaterPercent(ing)
	}
	return r
}

type nutrientTotals struct {
	fat, satFat, carbs, sugar, protein, salt, water float64
}

// ComputeNutrition 計算成品每 100g 營養素。
// 原料以原始清單計（不經物種彙總），脂肪損耗先扣除，其餘損耗依損耗類型分配。
func ComputeNutrition(ingredients []Ingredient, processLoss, fatLoss float64, lossType LossType, endWeightKg float64) Nutrition {
	if lossType == LossNone {
		processLoss, fatLoss = 0, 0
	}
	processLoss = clampPercent(processLoss)
	fatLoss = clampPercent(fatLoss)

	var raw nutrientTotals
	var rawGrams float64
	for _, ing := range ingredients {
		grams := nonNegative(ing.RawMass) * 1000
		rawGrams += grams
		r := ResolveNutrition(ing)
		f := grams / 100
		raw.fat += f * r.Fat
		raw.satFat += f * r.SaturatedFat
		raw.carbs += f * r.Carbohydrate
		raw.sugar += f * r.Sugar
		raw.protein += f * r.Protein
		raw.salt += f * r.Salt
		raw.water += f * r.Water
	}

	fatLost := rawGrams * fatLoss / 100
	final := raw
	final.fat = nonNegative(raw.fat - fatLost)

	totalLost := rawGrams * processLoss / 100
	nonFatLoss := nonNegative(totalLost - fatLost)

	if lossType == LossCooking {
		final.water = nonNegative(raw.water - nonFatLoss*juiceWater)
		final.protein = nonNegative(raw.protein - nonFatLoss*juiceProtein)
		final.salt = nonNegative(raw.salt - nonFatLoss*juiceSalt)
		final.sugar = nonNegative(raw.sugar - nonFatLoss*juiceSugar)
		final.carbs = nonNegative(raw.carbs - nonFatLoss*juiceSugar)
	} else {
		final.water = nonNegative(raw.water - nonFatLoss)
	}

	final.satFat = 0
	if raw.fat > 0 {
		final.satFat = raw.satFat * final.fat / raw.fat
	}

	endGrams := endWeightKg * 1000
	if endGrams <= 0 {
		return Nutrition{}
	}
	per100 := func(g float64) float64 { return g / endGrams * 100 }

	out := Nutrition{
		Fat:          per100(final.fat),
		SaturatedFat: per100(final.satFat),
		Carbohydrate: per100(final.carbs),
		Sugar:        per100(final.sugar),
		Protein:      per100(final.protein),
		Salt:         per100(final.salt),
		Water:        per100(final.water),
	}
	out.EnergyKJ = out.Fat*kjPerFat + out.Protein*kjPerProtein + out.Carbohydrate*kjPerCarb
	out.EnergyKcal = out.Fat*kcalPerFat + out.Protein*kcalPerProtein + out.Carbohydrate*kcalPerCarb
	return out
}
