package quid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func leanMeat() Ingredient {
	return Ingredient{
		Name:    "Schweinefleisch",
		RawMass: 1,
		IsMeat:  true,
		Nutrition: &NutritionInput{
			Fat:          ptr(20),
			SaturatedFat: ptr(8),
			Protein:      ptr(20),
			Water:        ptr(60),
		},
	}
}

func TestResolveNutrition(t *testing.T) {
	r := ResolveNutrition(leanMeat())
	assert.Equal(t, 20.0, r.Fat)
	assert.Equal(t, 60.0, r.Water)

	water := ResolveNutrition(Ingredient{Name: "Wasser"})
	assert.Equal(t, 100.0, water.Water)

	empty := ResolveNutrition(Ingredient{Name: "Pfeffer"})
	assert.Equal(t, ResolvedNutrition{Water: 10}, empty)

	clamped := ResolveNutrition(Ingredient{Name: "X", Nutrition: &NutritionInput{Fat: ptr(140), Salt: ptr(-3)}})
	assert.Equal(t, 100.0, clamped.Fat)
	assert.Equal(t, 0.0, clamped.Salt)
}

func TestComputeNutrition_Drying(t *testing.T) {
	n := ComputeNutrition([]Ingredient{leanMeat()}, 10, 0, LossDrying, 0.9)

	// 200 g 脂肪 / 900 g 成品
	assert.InDelta(t, 22.222, n.Fat, 1e-3)
	assert.InDelta(t, 22.222, n.Protein, 1e-3)
	assert.InDelta(t, 55.556, n.Water, 1e-3)
	assert.InDelta(t, 8.889, n.SaturatedFat, 1e-3)
	assert.InDelta(t, 22.222*37+22.222*17, n.EnergyKJ, 0.1)
	assert.InDelta(t, 22.222*9+22.222*4, n.EnergyKcal, 0.1)
}

func TestComputeNutrition_CookingJuice(t *testing.T) {
	n := ComputeNutrition([]Ingredient{leanMeat()}, 10, 0, LossCooking, 0.9)

	// 100 g 汁液：水 93 g、蛋白質 5 g、鹽 1 g、糖 1 g
	assert.InDelta(t, 507.0/900*100, n.Water, 1e-6)
	assert.InDelta(t, 195.0/900*100, n.Protein, 1e-6)
	assert.InDelta(t, 200.0/900*100, n.Fat, 1e-6)
	assert.Equal(t, 0.0, n.Salt)
	assert.Equal(t, 0.0, n.Sugar)
	assert.Equal(t, 0.0, n.Carbohydrate)
}

func TestComputeNutrition_FatLossScalesSaturatedFat(t *testing.T) {
	n := ComputeNutrition([]Ingredient{leanMeat()}, 10, 5, LossDrying, 0.9)

	assert.InDelta(t, 150.0/900*100, n.Fat, 1e-6)
	assert.InDelta(t, 60.0/900*100, n.SaturatedFat, 1e-6)
	// 總損耗 100 g 扣除脂肪 50 g，其餘 50 g 為水
	assert.InDelta(t, 550.0/900*100, n.Water, 1e-6)
}

func TestComputeNutrition_NoneIgnoresLosses(t *testing.T) {
	n := ComputeNutrition([]Ingredient{leanMeat()}, 30, 10, LossNone, 1)
	assert.InDelta(t, 20, n.Fat, 1e-9)
	assert.InDelta(t, 60, n.Water, 1e-9)
}

func TestComputeNutrition_ZeroEndWeight(t *testing.T) {
	assert.Equal(t, Nutrition{}, ComputeNutrition([]Ingredient{leanMeat()}, 100, 0, LossDrying, 0))
	assert.Equal(t, Nutrition{}, ComputeNutrition(nil, 0, 0, LossDrying, 0))
}

func TestComputeNutrition_NoFatGuardsSaturatedFat(t *testing.T) {
	sugar := Ingredient{Name: "Zucker", RawMass: 1, Nutrition: &NutritionInput{Carbohydrate: ptr(100), Sugar: ptr(100)}}
	n := ComputeNutrition([]Ingredient{sugar}, 0, 0, LossDrying, 1)
	assert.Equal(t, 0.0, n.SaturatedFat)
	assert.InDelta(t, 100*17, n.EnergyKJ, 1e-9)
	assert.InDelta(t, 100*4, n.EnergyKcal, 1e-9)
}
