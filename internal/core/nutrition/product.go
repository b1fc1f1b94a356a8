package nutrition

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"quid-calculator/internal/core/quid"
)

const kjPerKcal = 4.184

// Product 條碼查得的商品營養資料（每 100g）
type Product struct {
	Code            string              `json:"code"`
	Name            string              `json:"name"`
	Brands          string              `json:"brands,omitempty"`
	IngredientsText string              `json:"ingredientsText,omitempty"`
	Allergens       []string            `json:"allergens"`
	Nutrition       quid.NutritionInput `json:"nutrition"`
}

// Ingredient 轉為可直接放入配方的原料
func (p *Product) Ingredient(rawMass float64) quid.Ingredient {
	n := p.Nutrition
	return quid.Ingredient{
		ID:             "off-" + p.Code,
		Name:           p.Name,
		RawMass:        rawMass,
		SubIngredients: p.IngredientsText,
		Allergens:      append([]string(nil), p.Allergens...),
		Nutrition:      &n,
	}
}

type offResponse struct {
	Code    string      `json:"code"`
	Status  int         `json:"status"`
	Product *offProduct `json:"product"`
}

type offProduct struct {
	ProductName       string         `json:"product_name"`
	ProductNameDE     string         `json:"product_name_de"`
	GenericName       string         `json:"generic_name"`
	GenericNameDE     string         `json:"generic_name_de"`
	Brands            string         `json:"brands"`
	IngredientsText   string         `json:"ingredients_text"`
	IngredientsTextDE string         `json:"ingredients_text_de"`
	AllergensTags     []string       `json:"allergens_tags"`
	Nutriments        map[string]any `json:"nutriments"`
}

// name 德文名稱優先
func (p *offProduct) name() string {
	for _, s := range []string{p.ProductNameDE, p.ProductName, p.GenericNameDE, p.GenericName} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

func (p *offProduct) ingredients() string {
	if s := strings.TrimSpace(p.IngredientsTextDE); s != "" {
		return s
	}
	return strings.TrimSpace(p.IngredientsText)
}

// toProduct 轉換並過濾不合理的數值
func (p *offProduct) toProduct(code string) *Product {
	out := &Product{
		Code:            code,
		Name:            p.name(),
		Brands:          strings.TrimSpace(p.Brands),
		IngredientsText: p.ingredients(),
		Allergens:       allergenTags(p.AllergensTags),
	}

	m := p.Nutriments
	n := &out.Nutrition
	n.Fat = grams(m, "fat_100g")
	n.SaturatedFat = grams(m, "saturated-fat_100g")
	n.Carbohydrate = grams(m, "carbohydrates_100g")
	n.Sugar = grams(m, "sugars_100g")
	n.Protein = grams(m, "proteins_100g")
	n.Salt = grams(m, "salt_100g")
	n.Water = grams(m, "water_100g")
	n.Ash = grams(m, "ash_100g")

	kj, hasKJ := extractFloat(m, "energy-kj_100g")
	if !hasKJ {
		// energy_100g 一律以 kJ 表示
		kj, hasKJ = extractFloat(m, "energy_100g")
	}
	if hasKJ {
		n.EnergyKJ = inRange(kj, 0, 10000*kjPerKcal)
	}
	if kcal, ok := extractFloat(m, "energy-kcal_100g"); ok {
		n.EnergyKcal = inRange(kcal, 0, 10000)
	} else if hasKJ {
		n.EnergyKcal = inRange(kj/kjPerKcal, 0, 10000)
	}
	return out
}

// allergenTags "en:milk" → "milk"
func allergenTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		t := strings.ToLower(strings.TrimSpace(tag))
		if i := strings.Index(t, ":"); i >= 0 {
			t = t[i+1:]
		}
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func grams(m map[string]any, key string) *float64 {
	v, ok := extractFloat(m, key)
	if !ok {
		return nil
	}
	return inRange(v, 0, 100)
}

func inRange(v, min, max float64) *float64 {
	if v < min || v > max {
		return nil
	}
	return &v
}

// extractFloat 將 nutriments 的值轉為 float64（數字或字串）
func extractFloat(m map[string]any, key string) (float64, bool) {
	raw, ok := m[key]
	if !ok {
		return 0, false
	}
	var f float64
	var err error
	switch x := raw.(type) {
	case json.Number:
		f, err = x.Float64()
	case float64:
		f = x
	case string:
		f, err = strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(x), ",", "."), 64)
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
