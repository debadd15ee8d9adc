package domain

import (
	"time"

	"ginutri/internal/catalog"
	"ginutri/internal/nutrition"
)

// MealEntry es una comida registrada en el diario. No lleva datos de presentacion;
// el icono se resuelve con catalog.IconFor.
type MealEntry struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Category catalog.Slot     `json:"category"`
	Time     string           `json:"time"`
	Items    string           `json:"items"`
	Macros   nutrition.Macros `json:"macros"`
	LoggedAt time.Time        `json:"logged_at"`
}

type ShoppingItem struct {
	ID       string `json:"id"`
	Aisle    string `json:"aisle"`
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Checked  bool   `json:"checked"`
}

type WaterLog struct {
	ID       string    `json:"id"`
	AmountMl int       `json:"amount_ml"`
	LoggedAt time.Time `json:"logged_at"`
}

// Water es el seguimiento de hidratacion del dia.
type Water struct {
	IntakeMl int        `json:"intake_ml"`
	GoalMl   int        `json:"goal_ml"`
	Logs     []WaterLog `json:"logs"`
}

func (w Water) RemainingMl() int {
	if w.IntakeMl >= w.GoalMl {
		return 0
	}
	return w.GoalMl - w.IntakeMl
}

func (w Water) GoalReached() bool {
	return w.GoalMl > 0 && w.IntakeMl >= w.GoalMl
}
