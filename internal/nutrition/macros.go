package nutrition

// Macros son las calorias y gramos de una comida o de un dia.
type Macros struct {
	Kcal    int `json:"kcal" yaml:"kcal"`
	Protein int `json:"protein" yaml:"protein"`
	Carbs   int `json:"carbs" yaml:"carbs"`
	Fat     int `json:"fat" yaml:"fat"`
}

func (m Macros) Add(o Macros) Macros {
	return Macros{
		Kcal:    m.Kcal + o.Kcal,
		Protein: m.Protein + o.Protein,
		Carbs:   m.Carbs + o.Carbs,
		Fat:     m.Fat + o.Fat,
	}
}

// SumMacros acumula los totales del dia.
func SumMacros(items []Macros) Macros {
	var total Macros
	for _, m := range items {
		total = total.Add(m)
	}
	return total
}

// Remaining es lo que falta para llegar a las metas; puede ser negativo si ya se excedieron.
type Remaining struct {
	Kcal    int `json:"kcal"`
	Protein int `json:"protein"`
	Carbs   int `json:"carbs"`
	Fat     int `json:"fat"`
}

func RemainingFor(t Targets, consumed Macros) Remaining {
	return Remaining{
		Kcal:    roundGrams(t.DailyCalories) - consumed.Kcal,
		Protein: t.ProteinGrams - consumed.Protein,
		Carbs:   t.CarbGrams - consumed.Carbs,
		Fat:     t.FatGrams - consumed.Fat,
	}
}

// BMICategory devuelve la banda de la OMS para un IMC.
func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "underweight"
	case bmi < 25:
		return "normal"
	case bmi < 30:
		return "overweight"
	default:
		return "obese"
	}
}
