package nutrition

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput se devuelve cuando las respuestas no permiten calcular metas.
var ErrInvalidInput = errors.New("invalid input")

// Calorias por gramo de cada macronutriente.
const (
	kcalPerGramProtein = 4
	kcalPerGramCarb    = 4
	kcalPerGramFat     = 9
)

// Reparto fijo de calorias diarias entre macros.
const maxDailyCalories = 1e8

const (
	proteinShare = 0.30
	carbShare    = 0.40
	fatShare     = 0.30
)

// Answers son las respuestas del onboarding ya convertidas a tipos numericos.
type Answers struct {
	Sex           Sex           `json:"sex"`
	WeightKg      float64       `json:"weight_kg"`
	HeightCm      float64       `json:"height_cm"`
	AgeYears      int           `json:"age_years"`
	ActivityLevel ActivityLevel `json:"activity_level"`
	Goal          Goal          `json:"goal"`
}

// Targets agrupa las metas nutricionales derivadas de Answers.
type Targets struct {
	BMI                         float64 `json:"bmi"`
	BasalMetabolicRate          float64 `json:"basal_metabolic_rate"`
	TotalDailyEnergyExpenditure float64 `json:"total_daily_energy_expenditure"`
	DailyCalories               float64 `json:"daily_calories"`
	ProteinGrams                int     `json:"protein_grams"`
	CarbGrams                   int     `json:"carb_grams"`
	FatGrams                    int     `json:"fat_grams"`
}

// Calculate convierte las respuestas en metas nutricionales.
// Es una funcion pura: mismas respuestas, mismos bits en la salida.
//
// Cada producto pasa por una conversion explicita a float64 para que el
// compilador no lo fusione en un FMA; asi el resultado no depende de GOARCH.
func Calculate(a Answers) (Targets, error) {
	if err := a.Validate(); err != nil {
		return Targets{}, err
	}

	weight := a.WeightKg
	heightCm := a.HeightCm
	age := float64(a.AgeYears)

	heightM := heightCm / 100
	bmi := weight / float64(heightM*heightM)

	bmr := BasalMetabolicRate(a.Sex, weight, heightCm, age)

	multiplier, _ := a.ActivityLevel.Multiplier()
	tdee := float64(bmr * multiplier)

	calories := tdee + a.Goal.CalorieOffset()
	if !isFinite(bmi) || !isFinite(bmr) || !isFinite(tdee) {
		return Targets{}, fmt.Errorf("%w: inputs out of range, metrics are not finite", ErrInvalidInput)
	}
	if !(calories > 0) || math.IsInf(calories, 0) {
		return Targets{}, fmt.Errorf("%w: daily calories must be positive, got %.2f", ErrInvalidInput, calories)
	}
	// los gramos tienen que caber en un int de 32 bits
	if calories > maxDailyCalories {
		return Targets{}, fmt.Errorf("%w: daily calories out of range, got %.0f", ErrInvalidInput, calories)
	}

	return Targets{
		BMI:                         bmi,
		BasalMetabolicRate:          bmr,
		TotalDailyEnergyExpenditure: tdee,
		DailyCalories:               calories,
		ProteinGrams:                roundGrams(float64(calories*proteinShare) / kcalPerGramProtein),
		CarbGrams:                   roundGrams(float64(calories*carbShare) / kcalPerGramCarb),
		FatGrams:                    roundGrams(float64(calories*fatShare) / kcalPerGramFat),
	}, nil
}

// BasalMetabolicRate aplica Harris-Benedict revisada. Todo lo que no sea
// SexMale usa la rama femenina.
func BasalMetabolicRate(sex Sex, weightKg, heightCm, ageYears float64) float64 {
	if sex == SexMale {
		return 88.362 + float64(13.397*weightKg) + float64(4.799*heightCm) - float64(5.677*ageYears)
	}
	return 447.593 + float64(9.247*weightKg) + float64(3.098*heightCm) - float64(4.330*ageYears)
}

// Validate comprueba rangos numericos y dominios de enums.
func (a Answers) Validate() error {
	if !isPositiveFinite(a.WeightKg) {
		return fmt.Errorf("%w: weight_kg must be a positive finite number", ErrInvalidInput)
	}
	if !isPositiveFinite(a.HeightCm) {
		return fmt.Errorf("%w: height_cm must be a positive finite number", ErrInvalidInput)
	}
	if a.AgeYears <= 0 {
		return fmt.Errorf("%w: age_years must be positive", ErrInvalidInput)
	}
	if !a.Sex.Valid() {
		return fmt.Errorf("%w: unknown sex %q", ErrInvalidInput, a.Sex)
	}
	if _, ok := a.ActivityLevel.Multiplier(); !ok {
		return fmt.Errorf("%w: unknown activity level %q", ErrInvalidInput, a.ActivityLevel)
	}
	if !a.Goal.Valid() {
		return fmt.Errorf("%w: unknown goal %q", ErrInvalidInput, a.Goal)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

func isPositiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// roundGrams redondea al gramo mas cercano, mitades lejos de cero.
func roundGrams(v float64) int {
	return int(math.Round(v))
}
