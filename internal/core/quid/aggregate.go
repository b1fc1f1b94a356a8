package quid

import (
	"fmt"
	"strings"
)

// limitEpsilon 避免浮點誤差在剛好等於上限時觸發拆分
const limitEpsilon = 1e-9

type speciesGroup struct {
	mass         float64
	fatMass      float64
	ctMass       float64
	quidRequired bool
	names        []string
	allergens    []string
	aids         []string
}

// AggregateSpecies 依物種彙總肉類原料並套用脂肪與結締組織上限。
// 非肉類及無法辨識物種的原料原樣保留。
func AggregateSpecies(flat []Ingredient) ([]IngredientResult, []string) {
	groups := make(map[Species]*speciesGroup)
	var passThrough []IngredientResult
	var warnings []string

	for _, ing := range flat {
		if !ing.IsMeat {
			passThrough = append(passThrough, IngredientResult{Ingredient: ing})
			continue
		}
		species, ok := ResolveSpecies(ing.MeatSpecies, ing.Name)
		if !ok {
			passThrough = append(passThrough, IngredientResult{Ingredient: ing})
			continue
		}

		g, exists := groups[species]
		if !exists {
			g = &speciesGroup{}
			groups[species] = g
		}
		mass := nonNegative(ing.RawMass)
		res := ResolveNutrition(ing)
		g.mass += mass
		g.fatMass += mass * res.Fat / 100
		g.ctMass += mass * clampPercent(ing.ConnectiveTissue) / 100
		g.quidRequired = g.quidRequired || ing.QuidRequired
		g.names = appendUnique(g.names, ing.DisplayName())
		for _, a := range ing.Allergens {
			g.allergens = appendUnique(g.allergens, a)
		}
		for _, aid := range splitAids(ing.ProcessingAids) {
			g.aids = appendUnique(g.aids, aid)
		}
	}

	var results []IngredientResult
	for _, species := range speciesOrder {
		g, ok := groups[species]
		if !ok || g.mass <= 0 {
			continue
		}
		limit := speciesLimits[species]
		meat := g.line(limit)

		avgFat := g.fatMass / g.mass * 100
		avgCt := g.ctMass / g.mass * 100

		switch {
		case avgFat > limit.MaxFat+limitEpsilon:
			excess := nonNegative(g.mass * (avgFat - limit.MaxFat) / (100 - limit.MaxFat))
			meat.RawMass = nonNegative(g.mass - excess)
			fat := IngredientResult{
				Ingredient: Ingredient{
					ID:          "species-fat-" + string(species),
					Name:        limit.FatName,
					RawMass:     excess,
					MeatSpecies: string(species),
				},
				SplitFromMeat: true,
			}
			results = append(results, meat, fat)
			warnings = append(warnings, fmt.Sprintf(
				"%s: Fettgehalt %s %% überschreitet den Grenzwert von %s%%. %s g werden als %s separat deklariert.",
				limit.Label, formatNumber(avgFat, 1), formatNumber(limit.MaxFat, 0),
				formatNumber(excess*1000, 1), limit.FatName))
		case avgCt > limit.MaxConnectiveTissue+limitEpsilon:
			excess := nonNegative(g.mass * (avgCt - limit.MaxConnectiveTissue) / (100 - limit.MaxConnectiveTissue))
			// 超出的結締組織只降低肉含量，不另行標示
			meat.RawMass = nonNegative(g.mass - excess)
			results = append(results, meat)
			warnings = append(warnings, fmt.Sprintf(
				"%s: Bindegewebsanteil %s %% überschreitet den Grenzwert von %s%%. Der Fleischanteil wird um %s g reduziert.",
				limit.Label, formatNumber(avgCt, 1), formatNumber(limit.MaxConnectiveTissue, 0),
				formatNumber(excess*1000, 1)))
		default:
			results = append(results, meat)
		}
	}

	return append(results, passThrough...), warnings
}

func (g *speciesGroup) line(limit SpeciesLimit) IngredientResult {
	return IngredientResult{
		Ingredient: Ingredient{
			ID:             "species-" + string(limit.Species),
			Name:           limit.MeatName,
			RawMass:        g.mass,
			QuidRequired:   g.quidRequired,
			IsMeat:         true,
			MeatSpecies:    string(limit.Species),
			Allergens:      g.allergens,
			ProcessingAids: strings.Join(g.aids, ", "),
		},
		AggregatedFrom: g.names,
	}
}

func appendUnique(list []string, v string) []string {
	if v == "" {
		return list
	}
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
