package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ginutri/internal/catalog"
	"ginutri/internal/domain"
	"ginutri/internal/metrics"
	"ginutri/internal/navigation"
	"ginutri/internal/nutrition"
	"ginutri/internal/onboarding"
	"ginutri/internal/repository"
)

var (
	ErrSessionNotFound      = repository.ErrSessionNotFound
	ErrProfileRequired      = navigation.ErrProfileRequired
	ErrMealNotFound         = errors.New("meal not found")
	ErrShoppingItemNotFound = errors.New("shopping item not found")
	ErrInvalidMeal          = errors.New("invalid meal")
	ErrInvalidWaterAmount   = errors.New("invalid water amount")
	ErrRateLimited          = errors.New("rate limited")
	ErrScreenNotFound       = errors.New("screen not found")
)

const dashboardRecentMeals = 3

// SessionService coordina el estado transitorio de cada cliente.
type SessionService struct {
	logger      *zap.Logger
	store       repository.SessionStore
	catalog     *catalog.Catalog
	metrics     *metrics.Metrics
	ttl         time.Duration
	waterGoalMl int
	locks       *keyedMutex
	now         func() time.Time
	newID       func() string
}

type SessionServiceConfig struct {
	TTL         time.Duration
	WaterGoalMl int
}

func NewSessionService(logger *zap.Logger, store repository.SessionStore, cat *catalog.Catalog, m *metrics.Metrics, cfg SessionServiceConfig) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 4 * time.Hour
	}
	goal := cfg.WaterGoalMl
	if goal <= 0 && cat != nil {
		goal = cat.Water.GoalMl
	}
	return &SessionService{
		logger:      logger,
		store:       store,
		catalog:     cat,
		metrics:     m,
		ttl:         ttl,
		waterGoalMl: goal,
		locks:       newKeyedMutex(),
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
}

func (s *SessionService) Create(ctx context.Context) (domain.Session, error) {
	if s.store == nil {
		return domain.Session{}, errors.New("session service not configured")
	}
	now := s.now()
	session := domain.Session{
		ID:         s.newID(),
		Navigation: navigation.Initial(),
		Onboarding: onboarding.New(),
		Diary:      []domain.MealEntry{},
		Shopping:   []domain.ShoppingItem{},
		Water:      domain.Water{GoalMl: s.waterGoalMl, Logs: []domain.WaterLog{}},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Save(ctx, session, s.ttl); err != nil {
		return domain.Session{}, fmt.Errorf("save session: %w", err)
	}
	s.metrics.SessionCreated()
	s.logger.Info("session created", zap.String("session_id", session.ID))
	return session, nil
}

func (s *SessionService) Get(ctx context.Context, id string) (domain.Session, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Session{}, ErrSessionNotFound
	}
	return s.store.Get(ctx, id)
}

// Dispatch aplica un evento de navegacion.
func (s *SessionService) Dispatch(ctx context.Context, id string, event navigation.Event) (domain.Session, error) {
	return s.mutate(ctx, id, func(session *domain.Session) error {
		if event.Type == navigation.EventOpenMeal && event.MealID != "" && session.Profile != nil {
			if _, ok := session.FindMeal(event.MealID); !ok {
				return fmt.Errorf("%w: %s", ErrMealNotFound, event.MealID)
			}
		}
		next, err := navigation.Transition(session.Navigation, event)
		if err != nil {
			return err
		}
		session.Navigation = next
		return nil
	})
}

func (s *SessionService) UpdateOnboarding(ctx context.Context, id string, patch onboarding.Patch) (onboarding.Draft, error) {
	session, err := s.mutate(ctx, id, func(session *domain.Session) error {
		session.Onboarding.Apply(patch)
		return nil
	})
	return session.Onboarding, err
}

func (s *SessionService) ToggleRestriction(ctx context.Context, id string, r onboarding.Restriction) (onboarding.Draft, error) {
	session, err := s.mutate(ctx, id, func(session *domain.Session) error {
		return session.Onboarding.ToggleRestriction(r)
	})
	return session.Onboarding, err
}

func (s *SessionService) NextStep(ctx context.Context, id string) (onboarding.Draft, error) {
	session, err := s.mutate(ctx, id, func(session *domain.Session) error {
		return session.Onboarding.Next()
	})
	return session.Onboarding, err
}

func (s *SessionService) PreviousStep(ctx context.Context, id string) (onboarding.Draft, error) {
	session, err := s.mutate(ctx, id, func(session *domain.Session) error {
		session.Onboarding.Back()
		return nil
	})
	return session.Onboarding, err
}

// PreviewTargets calcula las metas con el borrador actual sin cerrar el onboarding.
func (s *SessionService) PreviewTargets(ctx context.Context, id string) (nutrition.Targets, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nutrition.Targets{}, err
	}
	targets, err := session.Onboarding.Preview()
	s.metrics.ObserveCalculation(err)
	return targets, err
}

// CompleteOnboarding guarda el perfil, siembra diario y compras y lleva la sesion al dashboard.
func (s *SessionService) CompleteOnboarding(ctx context.Context, id string) (domain.Session, error) {
	session, err := s.mutate(ctx, id, func(session *domain.Session) error {
		if session.Navigation.Screen != navigation.ScreenOnboarding {
			return fmt.Errorf("%w: complete_onboarding from %s", navigation.ErrInvalidTransition, session.Navigation.Screen)
		}
		res, err := session.Onboarding.Finish()
		s.metrics.ObserveCalculation(err)
		if err != nil {
			return err
		}
		now := s.now()
		profile := domain.NewProfile(res, now)
		session.Profile = &profile

		state := session.Navigation
		state.HasProfile = true
		next, err := navigation.Transition(state, navigation.Event{Type: navigation.EventCompleteOnboarding})
		if err != nil {
			return err
		}
		session.Navigation = next
		session.Diary = s.seedDiary(now)
		session.Shopping = s.seedShopping()
		return nil
	})
	if err != nil {
		return domain.Session{}, err
	}
	s.metrics.OnboardingCompleted(string(session.Profile.Goal))
	s.logger.Info("onboarding completed",
		zap.String("session_id", id),
		zap.String("goal", string(session.Profile.Goal)),
		zap.Float64("daily_calories", session.Profile.Targets.DailyCalories),
	)
	return session, nil
}

func (s *SessionService) seedDiary(now time.Time) []domain.MealEntry {
	entries := make([]domain.MealEntry, 0, len(s.catalog.DiarySeed))
	for _, m := range s.catalog.DiarySeed {
		entries = append(entries, domain.MealEntry{
			ID:       s.newID(),
			Name:     m.Name,
			Category: m.Category,
			Time:     m.Time,
			Items:    m.Items,
			Macros:   m.Macros,
			LoggedAt: now,
		})
	}
	return entries
}

func (s *SessionService) seedShopping() []domain.ShoppingItem {
	items := make([]domain.ShoppingItem, 0, len(s.catalog.Shopping))
	for _, t := range s.catalog.Shopping {
		items = append(items, domain.ShoppingItem{
			ID:       s.newID(),
			Aisle:    t.Aisle,
			Name:     t.Name,
			Quantity: t.Quantity,
		})
	}
	return items
}

type MealInput struct {
	Name     string           `json:"name"`
	Category string           `json:"category"`
	Time     string           `json:"time"`
	Items    string           `json:"items"`
	Macros   nutrition.Macros `json:"macros"`
}

// MealView es una entrada del diario con su icono resuelto.
type MealView struct {
	domain.MealEntry
	Icon string `json:"icon"`
}

func (s *SessionService) AddMeal(ctx context.Context, id string, input MealInput) (MealView, error) {
	entry, err := s.buildMeal(input)
	if err != nil {
		return MealView{}, err
	}
	_, err = s.mutate(ctx, id, func(session *domain.Session) error {
		if session.Profile == nil {
			return ErrProfileRequired
		}
		session.Diary = append(session.Diary, entry)
		return nil
	})
	if err != nil {
		return MealView{}, err
	}
	s.metrics.MealLogged()
	return s.mealView(entry), nil
}

func (s *SessionService) buildMeal(input MealInput) (domain.MealEntry, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return domain.MealEntry{}, fmt.Errorf("%w: name is required", ErrInvalidMeal)
	}
	category := catalog.Slot(strings.ToLower(strings.TrimSpace(input.Category)))
	if !category.Valid() {
		return domain.MealEntry{}, fmt.Errorf("%w: unknown category %q", ErrInvalidMeal, input.Category)
	}
	clock := strings.TrimSpace(input.Time)
	if _, err := time.Parse("15:04", clock); err != nil || len(clock) != 5 {
		return domain.MealEntry{}, fmt.Errorf("%w: time must be HH:MM", ErrInvalidMeal)
	}
	m := input.Macros
	if m.Kcal < 0 || m.Protein < 0 || m.Carbs < 0 || m.Fat < 0 {
		return domain.MealEntry{}, fmt.Errorf("%w: macros must be non-negative", ErrInvalidMeal)
	}
	return domain.MealEntry{
		ID:       s.newID(),
		Name:     name,
		Category: category,
		Time:     clock,
		Items:    strings.TrimSpace(input.Items),
		Macros:   m,
		LoggedAt: s.now(),
	}, nil
}

// RemoveMeal borra una entrada; si estaba abierta en el detalle la sesion vuelve al dashboard.
func (s *SessionService) RemoveMeal(ctx context.Context, id, mealID string) error {
	_, err := s.mutate(ctx, id, func(session *domain.Session) error {
		for i, m := range session.Diary {
			if m.ID != mealID {
				continue
			}
			session.Diary = append(session.Diary[:i], session.Diary[i+1:]...)
			if session.Navigation.SelectedMeal == mealID {
				session.Navigation.SelectedMeal = ""
				session.Navigation.Screen = navigation.ScreenDashboard
			}
			return nil
		}
		return fmt.Errorf("%w: %s", ErrMealNotFound, mealID)
	})
	return err
}

func (s *SessionService) Meal(ctx context.Context, id, mealID string) (MealView, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return MealView{}, err
	}
	entry, ok := session.FindMeal(mealID)
	if !ok {
		return MealView{}, fmt.Errorf("%w: %s", ErrMealNotFound, mealID)
	}
	return s.mealView(entry), nil
}

func (s *SessionService) Diary(ctx context.Context, id string) ([]MealView, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.mealViews(session.Diary), nil
}

func (s *SessionService) mealView(m domain.MealEntry) MealView {
	return MealView{MealEntry: m, Icon: s.catalog.IconFor(m.Category)}
}

func (s *SessionService) mealViews(entries []domain.MealEntry) []MealView {
	out := make([]MealView, 0, len(entries))
	for _, m := range entries {
		out = append(out, s.mealView(m))
	}
	return out
}

// DayTotals son los totales consumidos frente a las metas del perfil.
type DayTotals struct {
	Consumed  nutrition.Macros    `json:"consumed"`
	Remaining nutrition.Remaining `json:"remaining"`
	Targets   nutrition.Targets   `json:"targets"`
}

func (s *SessionService) DayTotals(ctx context.Context, id string) (DayTotals, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return DayTotals{}, err
	}
	if session.Profile == nil {
		return DayTotals{}, ErrProfileRequired
	}
	return dayTotals(session), nil
}

func dayTotals(session domain.Session) DayTotals {
	macros := make([]nutrition.Macros, 0, len(session.Diary))
	for _, m := range session.Diary {
		macros = append(macros, m.Macros)
	}
	consumed := nutrition.SumMacros(macros)
	return DayTotals{
		Consumed:  consumed,
		Remaining: nutrition.RemainingFor(session.Profile.Targets, consumed),
		Targets:   session.Profile.Targets,
	}
}

func (s *SessionService) ToggleShoppingItem(ctx context.Context, id, itemID string) (domain.ShoppingItem, error) {
	var toggled domain.ShoppingItem
	_, err := s.mutate(ctx, id, func(session *domain.Session) error {
		for i := range session.Shopping {
			if session.Shopping[i].ID == itemID {
				session.Shopping[i].Checked = !session.Shopping[i].Checked
				toggled = session.Shopping[i]
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrShoppingItemNotFound, itemID)
	})
	return toggled, err
}

type AisleGroup struct {
	Aisle string                `json:"aisle"`
	Items []domain.ShoppingItem `json:"items"`
}

// ShoppingByAisle agrupa la lista por pasillo, en el orden en que aparece cada pasillo.
func (s *SessionService) ShoppingByAisle(ctx context.Context, id string) ([]AisleGroup, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	groups := []AisleGroup{}
	index := make(map[string]int)
	for _, item := range session.Shopping {
		i, ok := index[item.Aisle]
		if !ok {
			i = len(groups)
			index[item.Aisle] = i
			groups = append(groups, AisleGroup{Aisle: item.Aisle})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups, nil
}

// WaterView es el estado de hidratacion con los valores derivados.
type WaterView struct {
	domain.Water
	RemainingMl int   `json:"remaining_ml"`
	GoalReached bool  `json:"goal_reached"`
	QuickAddMl  []int `json:"quick_add_ml"`
}

func (s *SessionService) Water(ctx context.Context, id string) (WaterView, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return WaterView{}, err
	}
	return s.waterView(session.Water), nil
}

// AddWater suma agua sin pasar de la meta. Solo se registra lo que efectivamente se sumo.
func (s *SessionService) AddWater(ctx context.Context, id string, amountMl int) (WaterView, error) {
	if amountMl <= 0 {
		return WaterView{}, fmt.Errorf("%w: %d", ErrInvalidWaterAmount, amountMl)
	}
	added := 0
	session, err := s.mutate(ctx, id, func(session *domain.Session) error {
		w := &session.Water
		next := w.IntakeMl + amountMl
		if next > w.GoalMl {
			next = w.GoalMl
		}
		added = next - w.IntakeMl
		if added <= 0 {
			return nil
		}
		w.IntakeMl = next
		w.Logs = append(w.Logs, domain.WaterLog{ID: s.newID(), AmountMl: added, LoggedAt: s.now()})
		return nil
	})
	if err != nil {
		return WaterView{}, err
	}
	s.metrics.WaterAdded(added)
	return s.waterView(session.Water), nil
}

func (s *SessionService) waterView(w domain.Water) WaterView {
	var quick []int
	if s.catalog != nil {
		quick = s.catalog.Water.QuickAddMl
	}
	return WaterView{
		Water:       w,
		RemainingMl: w.RemainingMl(),
		GoalReached: w.GoalReached(),
		QuickAddMl:  quick,
	}
}

type MenuView struct {
	Day   catalog.Day        `json:"day"`
	Tier  onboarding.Tier    `json:"tier"`
	Meals []catalog.MenuMeal `json:"meals"`
}

// WeeklyMenu devuelve el cardapio del dia para el plan del perfil. Sin dia usa el lunes.
func (s *SessionService) WeeklyMenu(ctx context.Context, id, day string) (MenuView, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return MenuView{}, err
	}
	if session.Profile == nil {
		return MenuView{}, ErrProfileRequired
	}
	d := catalog.Monday
	if strings.TrimSpace(day) != "" {
		if d, err = catalog.ParseDay(day); err != nil {
			return MenuView{}, err
		}
	}
	meals, err := s.catalog.MenuFor(d, session.Profile.Premium())
	if err != nil {
		return MenuView{}, err
	}
	return MenuView{Day: d, Tier: session.Profile.Tier, Meals: meals}, nil
}

// Dashboard es la vista principal tras el onboarding.
type Dashboard struct {
	Profile     domain.Profile `json:"profile"`
	Theme       domain.Theme   `json:"theme"`
	Totals      DayTotals      `json:"totals"`
	Water       WaterView      `json:"water"`
	RecentMeals []MealView     `json:"recent_meals"`
	BottomNav   []string       `json:"bottom_nav"`
	DarkMode    bool           `json:"dark_mode"`
}

func (s *SessionService) Dashboard(ctx context.Context, id string) (Dashboard, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return Dashboard{}, err
	}
	if session.Profile == nil {
		return Dashboard{}, ErrProfileRequired
	}
	recent := session.Diary
	if len(recent) > dashboardRecentMeals {
		recent = recent[:dashboardRecentMeals]
	}
	nav := make([]string, 0, len(navigation.BottomNav))
	for _, screen := range navigation.BottomNav {
		nav = append(nav, string(screen))
	}
	return Dashboard{
		Profile:     *session.Profile,
		Theme:       domain.ThemeFor(session.Profile.Tier),
		Totals:      dayTotals(session),
		Water:       s.waterView(session.Water),
		RecentMeals: s.mealViews(recent),
		BottomNav:   nav,
		DarkMode:    session.DarkMode,
	}, nil
}

func (s *SessionService) SetDarkMode(ctx context.Context, id string, enabled bool) (domain.Session, error) {
	return s.mutate(ctx, id, func(session *domain.Session) error {
		session.DarkMode = enabled
		return nil
	})
}

// ScreenContent devuelve el texto de las pantallas que aun son placeholders.
func (s *SessionService) ScreenContent(screen string) (catalog.Placeholder, error) {
	parsed, ok := navigation.ParseScreen(screen)
	if !ok {
		return catalog.Placeholder{}, fmt.Errorf("%w: unknown screen %q", ErrScreenNotFound, screen)
	}
	p, ok := s.catalog.Placeholder(string(parsed))
	if !ok {
		return catalog.Placeholder{}, fmt.Errorf("%w: %s", ErrScreenNotFound, screen)
	}
	return p, nil
}

// mutate serializa los cambios de una sesion y la guarda renovando el TTL.
// Si fn falla no se guarda nada.
func (s *SessionService) mutate(ctx context.Context, id string, fn func(*domain.Session) error) (domain.Session, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Session{}, ErrSessionNotFound
	}
	unlock := s.locks.Lock(id)
	defer unlock()

	session, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.Session{}, err
	}
	if err := fn(&session); err != nil {
		return domain.Session{}, err
	}
	session.UpdatedAt = s.now()
	if err := s.store.Save(ctx, session, s.ttl); err != nil {
		s.logger.Error("save session failed", zap.String("session_id", id), zap.Error(err))
		return domain.Session{}, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock bloquea la clave y devuelve la funcion que la libera.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
