package onboarding

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"ginutri/internal/nutrition"
)

// Pasos del asistente, en orden.
const (
	StepName = iota
	StepAgeSex
	StepBody
	StepGoal
	StepActivity
	StepDietStyle
	StepRestrictions
	StepTier
	StepMealsPerDay
	StepSummary

	StepCount
)

var ErrInvalidStep = errors.New("invalid onboarding step")

type DietStyle string

const (
	DietTraditional DietStyle = "traditional"
	DietLowCarb     DietStyle = "low_carb"
	DietHighProtein DietStyle = "high_protein"
	DietVegetarian  DietStyle = "vegetarian"
	DietVegan       DietStyle = "vegan"
)

type Tier string

const (
	TierAccessible Tier = "accessible"
	TierPremium    Tier = "premium"
)

type Restriction string

const (
	RestrictionGluten  Restriction = "gluten"
	RestrictionLactose Restriction = "lactose"
	RestrictionPeanut  Restriction = "peanut"
	RestrictionSeafood Restriction = "seafood"
	RestrictionSoy     Restriction = "soy"
	RestrictionNone    Restriction = "none"
)

var (
	dietStyles   = map[DietStyle]struct{}{DietTraditional: {}, DietLowCarb: {}, DietHighProtein: {}, DietVegetarian: {}, DietVegan: {}}
	tiers        = map[Tier]struct{}{TierAccessible: {}, TierPremium: {}}
	restrictions = map[Restriction]struct{}{RestrictionGluten: {}, RestrictionLactose: {}, RestrictionPeanut: {}, RestrictionSeafood: {}, RestrictionSoy: {}, RestrictionNone: {}}
)

// Limites de plausibilidad del formulario; la calculadora acepta cualquier valor positivo.
const (
	minAge, maxAge       = 1, 130
	minWeight, maxWeight = 1.0, 500.0
	minHeight, maxHeight = 30.0, 272.0
	minMeals, maxMeals   = 3, 6
	defaultMealsPerDay   = "5"
)

// Draft guarda las respuestas tal como llegan del formulario.
type Draft struct {
	Step         int           `json:"step"`
	Name         string        `json:"name"`
	Age          string        `json:"age"`
	Sex          string        `json:"sex"`
	Weight       string        `json:"weight"`
	Height       string        `json:"height"`
	Goal         string        `json:"goal"`
	Activity     string        `json:"activity"`
	DietStyle    string        `json:"diet_style"`
	Restrictions []Restriction `json:"restrictions"`
	Tier         string        `json:"tier"`
	MealsPerDay  string        `json:"meals_per_day"`
}

// Patch actualiza solo los campos presentes.
type Patch struct {
	Name        *string `json:"name"`
	Age         *string `json:"age"`
	Sex         *string `json:"sex"`
	Weight      *string `json:"weight"`
	Height      *string `json:"height"`
	Goal        *string `json:"goal"`
	Activity    *string `json:"activity"`
	DietStyle   *string `json:"diet_style"`
	Tier        *string `json:"tier"`
	MealsPerDay *string `json:"meals_per_day"`
}

// Result es lo que produce un onboarding terminado.
type Result struct {
	Name         string            `json:"name"`
	Answers      nutrition.Answers `json:"answers"`
	Targets      nutrition.Targets `json:"targets"`
	DietStyle    DietStyle         `json:"diet_style"`
	Restrictions []Restriction     `json:"restrictions"`
	Tier         Tier              `json:"tier"`
	MealsPerDay  int               `json:"meals_per_day"`
}

func New() Draft {
	return Draft{
		Step:         StepName,
		Restrictions: []Restriction{},
		MealsPerDay:  defaultMealsPerDay,
	}
}

func (d *Draft) Apply(p Patch) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&d.Name, p.Name)
	set(&d.Age, p.Age)
	set(&d.Sex, p.Sex)
	set(&d.Weight, p.Weight)
	set(&d.Height, p.Height)
	set(&d.Goal, p.Goal)
	set(&d.Activity, p.Activity)
	set(&d.DietStyle, p.DietStyle)
	set(&d.Tier, p.Tier)
	set(&d.MealsPerDay, p.MealsPerDay)
}

// ToggleRestriction alterna una restriccion. "none" es exclusiva con el resto.
func (d *Draft) ToggleRestriction(r Restriction) error {
	r = Restriction(strings.ToLower(strings.TrimSpace(string(r))))
	if _, ok := restrictions[r]; !ok {
		return fmt.Errorf("%w: unknown restriction %q", ErrInvalidStep, r)
	}
	had := d.hasRestriction(r)

	if r == RestrictionNone {
		d.Restrictions = []Restriction{}
		if !had {
			d.Restrictions = append(d.Restrictions, RestrictionNone)
		}
		return nil
	}

	kept := make([]Restriction, 0, len(d.Restrictions)+1)
	for _, cur := range d.Restrictions {
		if cur == RestrictionNone || cur == r {
			continue
		}
		kept = append(kept, cur)
	}
	if !had {
		kept = append(kept, r)
	}
	d.Restrictions = kept
	return nil
}

func (d *Draft) hasRestriction(r Restriction) bool {
	for _, cur := range d.Restrictions {
		if cur == r {
			return true
		}
	}
	return false
}

// Next valida el paso actual y avanza.
func (d *Draft) Next() error {
	if d.Step >= StepSummary {
		return fmt.Errorf("%w: already on summary", ErrInvalidStep)
	}
	if err := d.ValidateStep(d.Step); err != nil {
		return err
	}
	d.Step++
	return nil
}

func (d *Draft) Back() {
	if d.Step > StepName {
		d.Step--
	}
}

// Progress devuelve el porcentaje mostrado en la barra del asistente.
func (d *Draft) Progress() int {
	return int(math.Round(float64(d.Step+1) / StepCount * 100))
}

// ValidateStep comprueba los campos que pide un paso concreto.
func (d *Draft) ValidateStep(step int) error {
	switch step {
	case StepName:
		if d.Name == "" {
			return fmt.Errorf("%w: name is required", ErrInvalidStep)
		}
	case StepAgeSex:
		if _, err := d.parseAge(); err != nil {
			return err
		}
		if _, err := nutrition.ParseSex(d.Sex); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidStep, err)
		}
	case StepBody:
		if _, err := parseDecimal("weight", d.Weight, minWeight, maxWeight); err != nil {
			return err
		}
		if _, err := parseDecimal("height", d.Height, minHeight, maxHeight); err != nil {
			return err
		}
	case StepGoal:
		if _, err := nutrition.ParseGoal(d.Goal); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidStep, err)
		}
	case StepActivity:
		if _, err := nutrition.ParseActivityLevel(d.Activity); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidStep, err)
		}
	case StepDietStyle:
		if _, ok := dietStyles[DietStyle(d.DietStyle)]; !ok {
			return fmt.Errorf("%w: diet_style must be one of traditional, low_carb, high_protein, vegetarian, vegan", ErrInvalidStep)
		}
	case StepRestrictions:
		// ninguna seleccion equivale a no declarar restricciones
	case StepTier:
		if _, ok := tiers[Tier(d.Tier)]; !ok {
			return fmt.Errorf("%w: tier must be accessible or premium", ErrInvalidStep)
		}
	case StepMealsPerDay:
		if _, err := d.parseMeals(); err != nil {
			return err
		}
	case StepSummary:
	default:
		return fmt.Errorf("%w: step %d out of range", ErrInvalidStep, step)
	}
	return nil
}

// Answers convierte los campos de texto a los tipos que usa la calculadora.
func (d *Draft) Answers() (nutrition.Answers, error) {
	age, err := d.parseAge()
	if err != nil {
		return nutrition.Answers{}, err
	}
	weight, err := parseDecimal("weight", d.Weight, minWeight, maxWeight)
	if err != nil {
		return nutrition.Answers{}, err
	}
	height, err := parseDecimal("height", d.Height, minHeight, maxHeight)
	if err != nil {
		return nutrition.Answers{}, err
	}
	sex, err := nutrition.ParseSex(d.Sex)
	if err != nil {
		return nutrition.Answers{}, err
	}
	activity, err := nutrition.ParseActivityLevel(d.Activity)
	if err != nil {
		return nutrition.Answers{}, err
	}
	goal, err := nutrition.ParseGoal(d.Goal)
	if err != nil {
		return nutrition.Answers{}, err
	}
	return nutrition.Answers{
		Sex:           sex,
		WeightKg:      weight,
		HeightCm:      height,
		AgeYears:      age,
		ActivityLevel: activity,
		Goal:          goal,
	}, nil
}

// Preview calcula las metas para el paso de resumen.
func (d *Draft) Preview() (nutrition.Targets, error) {
	a, err := d.Answers()
	if err != nil {
		return nutrition.Targets{}, err
	}
	return nutrition.Calculate(a)
}

// Finish cierra el onboarding; solo es valido en el paso de resumen.
func (d *Draft) Finish() (Result, error) {
	if d.Step != StepSummary {
		return Result{}, fmt.Errorf("%w: finish requires summary step, on %d", ErrInvalidStep, d.Step)
	}
	for step := StepName; step < StepSummary; step++ {
		if err := d.ValidateStep(step); err != nil {
			return Result{}, err
		}
	}
	answers, err := d.Answers()
	if err != nil {
		return Result{}, err
	}
	targets, err := nutrition.Calculate(answers)
	if err != nil {
		return Result{}, err
	}
	meals, _ := d.parseMeals()

	restr := make([]Restriction, len(d.Restrictions))
	copy(restr, d.Restrictions)

	return Result{
		Name:         d.Name,
		Answers:      answers,
		Targets:      targets,
		DietStyle:    DietStyle(d.DietStyle),
		Restrictions: restr,
		Tier:         Tier(d.Tier),
		MealsPerDay:  meals,
	}, nil
}

func (d *Draft) parseAge() (int, error) {
	age, err := strconv.Atoi(d.Age)
	if err != nil {
		return 0, fmt.Errorf("%w: age must be an integer", nutrition.ErrInvalidInput)
	}
	if age < minAge || age > maxAge {
		return 0, fmt.Errorf("%w: age must be between %d and %d", nutrition.ErrInvalidInput, minAge, maxAge)
	}
	return age, nil
}

func (d *Draft) parseMeals() (int, error) {
	n, err := strconv.Atoi(d.MealsPerDay)
	if err != nil || n < minMeals || n > maxMeals {
		return 0, fmt.Errorf("%w: meals_per_day must be between %d and %d", ErrInvalidStep, minMeals, maxMeals)
	}
	return n, nil
}

// parseDecimal acepta coma o punto como separador decimal.
func parseDecimal(field, raw string, lo, hi float64) (float64, error) {
	v, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(raw), ",", ".", 1), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s must be a number", nutrition.ErrInvalidInput, field)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%w: %s must be between %g and %g", nutrition.ErrInvalidInput, field, lo, hi)
	}
	return v, nil
}
