package quid

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// WaterDeclarationThreshold 添加水申報比例不超過此值時不列入成分表
const WaterDeclarationThreshold = 5.0

// germanPrinter 可並行使用
var germanPrinter = message.NewPrinter(language.German)

// formatNumber 以德文格式輸出數字（逗號為小數點），小數位數為 0 至 2
func formatNumber(v float64, decimals int) string {
	switch decimals {
	case 0:
		return germanPrinter.Sprintf("%.0f", v)
	case 2:
		return germanPrinter.Sprintf("%.2f", v)
	default:
		return germanPrinter.Sprintf("%.1f", v)
	}
}

// FormatPercent 百分比取一位小數，德文格式
func FormatPercent(v float64) string {
	return formatNumber(v, 1)
}

// LabelFragment 產生單一原料的成分表文字
func LabelFragment(line IngredientResult) string {
	name := EmphasizeAllergens(line.DisplayName(), line.Allergens)
	if line.SubIngredients != "" {
		name += " (" + EmphasizeAllergens(line.SubIngredients, line.Allergens) + ")"
	}
	if !line.QuidRequired {
		return name
	}
	if line.QuidPercent > 100 {
		return fmt.Sprintf("hergestellt aus %s g %s je 100 g des Enderzeugnisses", formatNumber(line.QuidPercent, 1), name)
	}
	return fmt.Sprintf("%s (%s%%)", name, FormatPercent(line.QuidPercent))
}

// BuildLabel 串接成分表，略過比例不超過門檻的添加水
func BuildLabel(lines []IngredientResult) string {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		if line.IsWaterLine && line.QuidPercent <= WaterDeclarationThreshold {
			continue
		}
		parts = append(parts, line.LabelText)
	}
	return strings.Join(parts, ", ")
}
