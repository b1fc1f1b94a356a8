package quid

import "fmt"

// MaxNestingDepth 子配方最大巢狀層數，超過視為循環引用
const MaxNestingDepth = 16

// Flatten 將子配方展開為原始原料。
// 子配方依 使用量 / 子配方成品重 縮放其原料質量後遞迴展開。
func Flatten(ingredients []Ingredient) ([]Ingredient, []string) {
	var warnings []string
	flat := flatten(ingredients, 0, &warnings)
	return flat, warnings
}

func flatten(ingredients []Ingredient, depth int, warnings *[]string) []Ingredient {
	out := make([]Ingredient, 0, len(ingredients))
	for _, ing := range ingredients {
		if ing.Kind() != KindCompound {
			out = append(out, ing)
			continue
		}
		if depth >= MaxNestingDepth {
			*warnings = append(*warnings, fmt.Sprintf(
				"Teilrezept %q überschreitet die maximale Verschachtelungstiefe von %d und wird nicht aufgelöst.",
				ing.DisplayName(), MaxNestingDepth))
			out = append(out, ing)
			continue
		}

		scale := scaleFactor(ing)
		children := make([]Ingredient, len(ing.OriginalSubIngredients))
		for i, sub := range ing.OriginalSubIngredients {
			sub.RawMass = nonNegative(sub.RawMass * scale)
			children[i] = sub
		}
		out = append(out, flatten(children, depth+1, warnings)...)
	}
	return out
}

// scaleFactor 成品重未記錄時以子原料總重代替；兩者皆為 0 時回傳 1
func scaleFactor(ing Ingredient) float64 {
	endWeight := ing.SubRecipeEndWeight
	if endWeight <= 0 {
		for _, sub := range ing.OriginalSubIngredients {
			endWeight += sub.RawMass
		}
	}
	if endWeight <= 0 {
		return 1
	}
	return ing.RawMass / endWeight
}
