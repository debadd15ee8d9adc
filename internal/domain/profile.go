package domain

import (
	"time"

	"ginutri/internal/nutrition"
	"ginutri/internal/onboarding"
)

// Profile es la foto inmutable del perfil al terminar el onboarding.
type Profile struct {
	Name          string                   `json:"name"`
	Sex           nutrition.Sex            `json:"sex"`
	AgeYears      int                      `json:"age_years"`
	WeightKg      float64                  `json:"weight_kg"`
	HeightCm      float64                  `json:"height_cm"`
	Goal          nutrition.Goal           `json:"goal"`
	ActivityLevel nutrition.ActivityLevel  `json:"activity_level"`
	DietStyle     onboarding.DietStyle     `json:"diet_style"`
	Restrictions  []onboarding.Restriction `json:"restrictions"`
	Tier          onboarding.Tier          `json:"tier"`
	MealsPerDay   int                      `json:"meals_per_day"`
	Targets       nutrition.Targets        `json:"targets"`
	BMICategory   string                   `json:"bmi_category"`
	CreatedAt     time.Time                `json:"created_at"`
}

// NewProfile arma el perfil a partir del resultado del onboarding.
func NewProfile(res onboarding.Result, now time.Time) Profile {
	return Profile{
		Name:          res.Name,
		Sex:           res.Answers.Sex,
		AgeYears:      res.Answers.AgeYears,
		WeightKg:      res.Answers.WeightKg,
		HeightCm:      res.Answers.HeightCm,
		Goal:          res.Answers.Goal,
		ActivityLevel: res.Answers.ActivityLevel,
		DietStyle:     res.DietStyle,
		Restrictions:  res.Restrictions,
		Tier:          res.Tier,
		MealsPerDay:   res.MealsPerDay,
		Targets:       res.Targets,
		BMICategory:   nutrition.BMICategory(res.Targets.BMI),
		CreatedAt:     now,
	}
}

func (p Profile) Premium() bool {
	return p.Tier == onboarding.TierPremium
}

// Theme es la paleta de colores asociada al plan.
type Theme struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
}

func ThemeFor(tier onboarding.Tier) Theme {
	if tier == onboarding.TierPremium {
		return Theme{Primary: "#D4AF37", Secondary: "#FEF3C7", Accent: "#F59E0B"}
	}
	return Theme{Primary: "#10B981", Secondary: "#F5F3EE", Accent: "#8BC34A"}
}
