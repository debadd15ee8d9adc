package nutrition

import (
	"fmt"
	"strings"
)

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexOther  Sex = "other"
)

func (s Sex) Valid() bool {
	switch s {
	case SexMale, SexFemale, SexOther:
		return true
	}
	return false
}

type ActivityLevel string

const (
	ActivitySedentary ActivityLevel = "sedentary"
	ActivityLight     ActivityLevel = "light"
	ActivityModerate  ActivityLevel = "moderate"
	ActivityIntense   ActivityLevel = "intense"
)

var activityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary: 1.2,
	ActivityLight:     1.375,
	ActivityModerate:  1.55,
	ActivityIntense:   1.725,
}

// Multiplier devuelve el factor de actividad; ok=false si el nivel no existe.
func (l ActivityLevel) Multiplier() (float64, bool) {
	m, ok := activityMultipliers[l]
	return m, ok
}

// ActivityLevels lista los niveles de menor a mayor actividad.
func ActivityLevels() []ActivityLevel {
	return []ActivityLevel{ActivitySedentary, ActivityLight, ActivityModerate, ActivityIntense}
}

type Goal string

const (
	GoalLoseWeight Goal = "lose_weight"
	GoalGainMuscle Goal = "gain_muscle"
	GoalMaintain   Goal = "maintain"
	GoalReeducate  Goal = "re-educate"
	GoalEnergy     Goal = "energy"
)

func (g Goal) Valid() bool {
	switch g {
	case GoalLoseWeight, GoalGainMuscle, GoalMaintain, GoalReeducate, GoalEnergy:
		return true
	}
	return false
}

// CalorieOffset es el ajuste sobre el TDEE segun el objetivo.
func (g Goal) CalorieOffset() float64 {
	switch g {
	case GoalLoseWeight:
		return -500
	case GoalGainMuscle:
		return 300
	default:
		return 0
	}
}

// Alias aceptados desde el formulario original (etiquetas en portugues).
var (
	sexAliases = map[string]Sex{
		"male": SexMale, "masculino": SexMale,
		"female": SexFemale, "feminino": SexFemale,
		"other": SexOther, "outro": SexOther,
	}
	activityAliases = map[string]ActivityLevel{
		"sedentary": ActivitySedentary, "sedentario": ActivitySedentary,
		"light": ActivityLight, "leve": ActivityLight,
		"moderate": ActivityModerate, "moderado": ActivityModerate,
		"intense": ActivityIntense, "intenso": ActivityIntense,
	}
	goalAliases = map[string]Goal{
		"lose_weight": GoalLoseWeight, "emagrecer": GoalLoseWeight,
		"gain_muscle": GoalGainMuscle, "ganhar_massa": GoalGainMuscle,
		"maintain": GoalMaintain, "manter": GoalMaintain,
		"re-educate": GoalReeducate, "reeducate": GoalReeducate, "reeducar": GoalReeducate,
		"energy": GoalEnergy, "energia": GoalEnergy,
	}
)

func normalizeTag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func ParseSex(s string) (Sex, error) {
	if v, ok := sexAliases[normalizeTag(s)]; ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: unknown sex %q", ErrInvalidInput, s)
}

func ParseActivityLevel(s string) (ActivityLevel, error) {
	if v, ok := activityAliases[normalizeTag(s)]; ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: unknown activity level %q", ErrInvalidInput, s)
}

func ParseGoal(s string) (Goal, error) {
	if v, ok := goalAliases[normalizeTag(s)]; ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: unknown goal %q", ErrInvalidInput, s)
}
