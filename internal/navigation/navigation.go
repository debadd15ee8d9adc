package navigation

import (
	"errors"
	"fmt"
	"strings"
)

// Screen identifica una pantalla de la app.
type Screen string

const (
	ScreenSplash     Screen = "splash"
	ScreenWelcome    Screen = "welcome"
	ScreenLogin      Screen = "login"
	ScreenRegister   Screen = "register"
	ScreenOnboarding Screen = "onboarding"
	ScreenDashboard  Screen = "dashboard"
	ScreenMenu       Screen = "menu"
	ScreenCamera     Screen = "camera"
	ScreenDiary      Screen = "diary"
	ScreenProfile    Screen = "profile"
	ScreenChat       Screen = "chat"
	ScreenRecipes    Screen = "recipes"
	ScreenShopping   Screen = "shopping"
	ScreenProgress   Screen = "progress"
	ScreenWater      Screen = "water"
	ScreenMealDetail Screen = "meal_detail"
)

// appScreens son las pantallas que requieren un perfil completo.
var appScreens = map[Screen]struct{}{
	ScreenDashboard:  {},
	ScreenMenu:       {},
	ScreenCamera:     {},
	ScreenDiary:      {},
	ScreenProfile:    {},
	ScreenChat:       {},
	ScreenRecipes:    {},
	ScreenShopping:   {},
	ScreenProgress:   {},
	ScreenWater:      {},
	ScreenMealDetail: {},
}

// BottomNav son las pestañas de la barra inferior.
var BottomNav = []Screen{ScreenDashboard, ScreenMenu, ScreenCamera, ScreenDiary, ScreenProfile}

func (s Screen) IsApp() bool {
	_, ok := appScreens[s]
	return ok
}

// ParseScreen acepta el nombre sin distinguir mayusculas ni espacios.
func ParseScreen(s string) (Screen, bool) {
	screen := Screen(strings.ToLower(strings.TrimSpace(s)))
	if screen.IsApp() {
		return screen, true
	}
	switch screen {
	case ScreenSplash, ScreenWelcome, ScreenLogin, ScreenRegister, ScreenOnboarding:
		return screen, true
	}
	return "", false
}

type EventType string

const (
	EventSplashElapsed      EventType = "splash_elapsed"
	EventChooseLogin        EventType = "choose_login"
	EventChooseRegister     EventType = "choose_register"
	EventSubmitLogin        EventType = "submit_login"
	EventSubmitRegister     EventType = "submit_register"
	EventCompleteOnboarding EventType = "complete_onboarding"
	EventNavigate           EventType = "navigate"
	EventOpenMeal           EventType = "open_meal"
	EventBack               EventType = "back"
)

// Event es una intencion del usuario; Target y MealID solo aplican a navigate y open_meal.
type Event struct {
	Type   EventType `json:"type"`
	Target Screen    `json:"target,omitempty"`
	MealID string    `json:"meal_id,omitempty"`
}

// State es la posicion actual de la sesion en la maquina de pantallas.
type State struct {
	Screen       Screen `json:"screen"`
	SelectedMeal string `json:"selected_meal,omitempty"`
	HasProfile   bool   `json:"has_profile"`
}

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrProfileRequired   = errors.New("profile required")
)

// Initial es el estado de una sesion nueva.
func Initial() State {
	return State{Screen: ScreenSplash}
}

// Transition aplica un evento y devuelve el nuevo estado sin modificar el recibido.
func Transition(s State, e Event) (State, error) {
	next := s
	switch e.Type {
	case EventSplashElapsed:
		if s.Screen != ScreenSplash {
			return s, invalid(s, e)
		}
		next.Screen = ScreenWelcome

	case EventChooseLogin, EventChooseRegister:
		switch s.Screen {
		case ScreenWelcome, ScreenLogin, ScreenRegister:
		default:
			return s, invalid(s, e)
		}
		next.Screen = ScreenLogin
		if e.Type == EventChooseRegister {
			next.Screen = ScreenRegister
		}

	case EventSubmitRegister:
		if s.Screen != ScreenRegister {
			return s, invalid(s, e)
		}
		next.Screen = ScreenOnboarding

	case EventSubmitLogin:
		if s.Screen != ScreenLogin {
			return s, invalid(s, e)
		}
		next.Screen = ScreenOnboarding
		if s.HasProfile {
			next.Screen = ScreenDashboard
		}

	case EventCompleteOnboarding:
		if s.Screen != ScreenOnboarding {
			return s, invalid(s, e)
		}
		if !s.HasProfile {
			return s, ErrProfileRequired
		}
		next.Screen = ScreenDashboard

	case EventNavigate:
		if !s.Screen.IsApp() || !e.Target.IsApp() || e.Target == ScreenMealDetail {
			return s, invalid(s, e)
		}
		if !s.HasProfile {
			return s, ErrProfileRequired
		}
		next.Screen = e.Target
		next.SelectedMeal = ""

	case EventOpenMeal:
		if !s.Screen.IsApp() || e.MealID == "" {
			return s, invalid(s, e)
		}
		if !s.HasProfile {
			return s, ErrProfileRequired
		}
		next.Screen = ScreenMealDetail
		next.SelectedMeal = e.MealID

	case EventBack:
		switch {
		case s.Screen.IsApp() && s.Screen != ScreenDashboard:
			next.Screen = ScreenDashboard
			next.SelectedMeal = ""
		case s.Screen == ScreenOnboarding || s.Screen == ScreenLogin || s.Screen == ScreenRegister:
			next.Screen = ScreenWelcome
		default:
			return s, invalid(s, e)
		}

	default:
		return s, invalid(s, e)
	}
	return next, nil
}

func invalid(s State, e Event) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, e.Type, s.Screen)
}
