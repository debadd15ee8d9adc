package domain

import (
	"time"

	"ginutri/internal/navigation"
	"ginutri/internal/onboarding"
)

// Session es todo el estado transitorio de un cliente: pantalla, onboarding,
// perfil y listas del dashboard. Expira con su TTL y nunca se promueve a cuenta.
type Session struct {
	ID         string           `json:"id"`
	Navigation navigation.State `json:"navigation"`
	Onboarding onboarding.Draft `json:"onboarding"`
	Profile    *Profile         `json:"profile,omitempty"`
	Diary      []MealEntry      `json:"diary"`
	Shopping   []ShoppingItem   `json:"shopping"`
	Water      Water            `json:"water"`
	DarkMode   bool             `json:"dark_mode"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func (s *Session) FindMeal(id string) (MealEntry, bool) {
	for _, m := range s.Diary {
		if m.ID == id {
			return m, true
		}
	}
	return MealEntry{}, false
}
