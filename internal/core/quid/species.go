package quid

import "strings"

// Species 肉品物種
type Species string

const (
	SpeciesPork    Species = "pork"
	SpeciesBeef    Species = "beef"
	SpeciesLamb    Species = "lamb"
	SpeciesVeal    Species = "veal"
	SpeciesMammal  Species = "mammal"
	SpeciesChicken Species = "chicken"
	SpeciesTurkey  Species = "turkey"
	SpeciesDuck    Species = "duck"
	SpeciesPoultry Species = "poultry"
	SpeciesRabbit  Species = "rabbit"
)

// SpeciesLimit 物種的法定脂肪與結締組織上限（百分比）
type SpeciesLimit struct {
	Species             Species `json:"species"`
	Label               string  `json:"label"`
	MeatName            string  `json:"meatName"`
	FatName             string  `json:"fatName"`
	MaxFat              float64 `json:"maxFat"`
	MaxConnectiveTissue float64 `json:"maxConnectiveTissue"`
}

// speciesOrder 固定輸出順序
var speciesOrder = []Species{
	SpeciesPork, SpeciesBeef, SpeciesLamb, SpeciesVeal, SpeciesMammal,
	SpeciesChicken, SpeciesTurkey, SpeciesDuck, SpeciesPoultry, SpeciesRabbit,
}

var speciesLimits = map[Species]SpeciesLimit{
	SpeciesPork:    {SpeciesPork, "Schwein", "Schweinefleisch", "Schweinespeck", 30, 25},
	SpeciesBeef:    {SpeciesBeef, "Rind", "Rindfleisch", "Rinderfett", 25, 25},
	SpeciesLamb:    {SpeciesLamb, "Lamm", "Lammfleisch", "Lammfett", 25, 25},
	SpeciesVeal:    {SpeciesVeal, "Kalb", "Kalbfleisch", "Kalbsfett", 25, 25},
	SpeciesMammal:  {SpeciesMammal, "Säugetier", "Säugetierfleisch", "Säugetierfett", 25, 25},
	SpeciesChicken: {SpeciesChicken, "Hähnchen", "Hähnchenfleisch", "Hähnchenfett", 15, 10},
	SpeciesTurkey:  {SpeciesTurkey, "Pute", "Putenfleisch", "Putenfett", 15, 10},
	SpeciesDuck:    {SpeciesDuck, "Ente", "Entenfleisch", "Entenfett", 15, 10},
	SpeciesPoultry: {SpeciesPoultry, "Geflügel", "Geflügelfleisch", "Geflügelfett", 15, 10},
	SpeciesRabbit:  {SpeciesRabbit, "Kaninchen", "Kaninchenfleisch", "Kaninchenfett", 15, 10},
}

// speciesKeywords 關鍵字比對順序有意義：小牛要先於牛，特定禽類先於泛稱
var speciesKeywords = []struct {
	species  Species
	keywords []string
}{
	{SpeciesVeal, []string{"kalb", "veal"}},
	{SpeciesPork, []string{"schwein", "pork", "speck", "bacon"}},
	{SpeciesBeef, []string{"rind", "beef"}},
	{SpeciesLamb, []string{"lamm", "schaf", "hammel", "lamb", "mutton"}},
	{SpeciesChicken, []string{"hähnchen", "haehnchen", "huhn", "hühner", "huehner", "chicken"}},
	{SpeciesTurkey, []string{"pute", "truthahn", "turkey"}},
	{SpeciesDuck, []string{"ente", "duck"}},
	{SpeciesPoultry, []string{"geflügel", "gefluegel", "poultry"}},
	{SpeciesRabbit, []string{"kaninchen", "hase", "rabbit"}},
	{SpeciesMammal, []string{"säugetier", "saeugetier", "mammal", "wild"}},
}

// Limits 依固定順序回傳物種上限表
func Limits() []SpeciesLimit {
	out := make([]SpeciesLimit, 0, len(speciesOrder))
	for _, s := range speciesOrder {
		out = append(out, speciesLimits[s])
	}
	return out
}

// LimitFor 查詢物種上限
func LimitFor(s Species) (SpeciesLimit, bool) {
	l, ok := speciesLimits[s]
	return l, ok
}

// normalizeSpecies 直接比對列舉值，否則以德文/英文關鍵字判斷
func normalizeSpecies(text string) (Species, bool) {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return "", false
	}
	if _, ok := speciesLimits[Species(t)]; ok {
		return Species(t), true
	}
	for _, entry := range speciesKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(t, kw) {
				return entry.species, true
			}
		}
	}
	return "", false
}

// ResolveSpecies 解析原料物種。
// 先看物種欄位；欄位為空時改用名稱；仍無法判斷則原樣使用欄位值，
// 查不到上限表時回傳 false。
func ResolveSpecies(species, name string) (Species, bool) {
	if s, ok := normalizeSpecies(species); ok {
		return s, true
	}
	if strings.TrimSpace(species) == "" {
		if s, ok := normalizeSpecies(name); ok {
			return s, true
		}
	}
	raw := Species(strings.TrimSpace(species))
	_, ok := speciesLimits[raw]
	return raw, ok
}
