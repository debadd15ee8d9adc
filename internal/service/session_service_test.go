package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"ginutri/internal/catalog"
	"ginutri/internal/navigation"
	"ginutri/internal/nutrition"
	"ginutri/internal/onboarding"
	"ginutri/internal/repository"
)

func newTestSessionService(t *testing.T) *SessionService {
	t.Helper()
	svc := NewSessionService(zap.NewNop(), repository.NewMemorySessionStore(), catalog.MustLoad(), nil, SessionServiceConfig{TTL: time.Hour})
	// lunes
	svc.now = func() time.Time { return time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC) }
	var mu sync.Mutex
	seq := 0
	svc.newID = func() string {
		mu.Lock()
		defer mu.Unlock()
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	return svc
}

func strPtr(s string) *string { return &s }

func fullPatch(tier string) onboarding.Patch {
	return onboarding.Patch{
		Name:        strPtr("Ana"),
		Age:         strPtr("32"),
		Sex:         strPtr("female"),
		Weight:      strPtr("68"),
		Height:      strPtr("165"),
		Goal:        strPtr("lose_weight"),
		Activity:    strPtr("moderate"),
		DietStyle:   strPtr("traditional"),
		Tier:        strPtr(tier),
		MealsPerDay: strPtr("5"),
	}
}

// onboardedSession lleva una sesion nueva hasta el dashboard.
func onboardedSession(t *testing.T, svc *SessionService, tier string) string {
	t.Helper()
	ctx := context.Background()
	session, err := svc.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, ev := range []navigation.EventType{navigation.EventSplashElapsed, navigation.EventChooseRegister, navigation.EventSubmitRegister} {
		if _, err := svc.Dispatch(ctx, session.ID, navigation.Event{Type: ev}); err != nil {
			t.Fatalf("dispatch %s: %v", ev, err)
		}
	}
	if _, err := svc.UpdateOnboarding(ctx, session.ID, fullPatch(tier)); err != nil {
		t.Fatalf("update onboarding: %v", err)
	}
	for i := 0; i < onboarding.StepSummary; i++ {
		if _, err := svc.NextStep(ctx, session.ID); err != nil {
			t.Fatalf("next step %d: %v", i, err)
		}
	}
	if _, err := svc.CompleteOnboarding(ctx, session.ID); err != nil {
		t.Fatalf("complete onboarding: %v", err)
	}
	return session.ID
}

func TestSessionService_CreateStartsOnSplash(t *testing.T) {
	svc := newTestSessionService(t)
	session, err := svc.Create(context.Background())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if session.Navigation.Screen != navigation.ScreenSplash || session.Navigation.HasProfile {
		t.Fatalf("unexpected navigation: %+v", session.Navigation)
	}
	if session.Water.GoalMl != 2000 || session.Onboarding.MealsPerDay != "5" {
		t.Fatalf("unexpected defaults: water=%+v draft=%+v", session.Water, session.Onboarding)
	}

	got, err := svc.Get(context.Background(), session.ID)
	if err != nil || got.ID != session.ID {
		t.Fatalf("expected stored session, got %+v err=%v", got, err)
	}
	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionService_OnboardingFlowReachesDashboard(t *testing.T) {
	svc := newTestSessionService(t)
	id := onboardedSession(t, svc, "accessible")

	session, err := svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if session.Navigation.Screen != navigation.ScreenDashboard || !session.Navigation.HasProfile {
		t.Fatalf("expected dashboard with profile, got %+v", session.Navigation)
	}
	p := session.Profile
	if p == nil {
		t.Fatalf("expected profile snapshot")
	}
	if p.Targets.ProteinGrams != 131 || p.Targets.CarbGrams != 175 || p.Targets.FatGrams != 58 {
		t.Fatalf("unexpected targets: %+v", p.Targets)
	}
	if p.Name != "Ana" || p.MealsPerDay != 5 || p.BMICategory != "normal" {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if len(session.Diary) != 3 || len(session.Shopping) != 10 {
		t.Fatalf("expected seeded diary and shopping, got %d/%d", len(session.Diary), len(session.Shopping))
	}
}

func TestSessionService_CompleteOnboardingRequiresOnboardingScreen(t *testing.T) {
	svc := newTestSessionService(t)
	session, _ := svc.Create(context.Background())

	_, err := svc.CompleteOnboarding(context.Background(), session.ID)
	if !errors.Is(err, navigation.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestSessionService_CompleteOnboardingBeforeSummaryKeepsSession(t *testing.T) {
	svc := newTestSessionService(t)
	ctx := context.Background()
	session, _ := svc.Create(ctx)
	for _, ev := range []navigation.EventType{navigation.EventSplashElapsed, navigation.EventChooseRegister, navigation.EventSubmitRegister} {
		if _, err := svc.Dispatch(ctx, session.ID, navigation.Event{Type: ev}); err != nil {
			t.Fatalf("dispatch %s: %v", ev, err)
		}
	}
	_, _ = svc.UpdateOnboarding(ctx, session.ID, fullPatch("accessible"))

	if _, err := svc.CompleteOnboarding(ctx, session.ID); !errors.Is(err, onboarding.ErrInvalidStep) {
		t.Fatalf("expected ErrInvalidStep, got %v", err)
	}
	got, _ := svc.Get(ctx, session.ID)
	if got.Profile != nil || got.Navigation.Screen != navigation.ScreenOnboarding {
		t.Fatalf("expected untouched session, got %+v", got.Navigation)
	}
}

func TestSessionService_NextStepValidatesFields(t *testing.T) {
	svc := newTestSessionService(t)
	ctx := context.Background()
	session, _ := svc.Create(ctx)

	if _, err := svc.NextStep(ctx, session.ID); !errors.Is(err, onboarding.ErrInvalidStep) {
		t.Fatalf("expected ErrInvalidStep without name, got %v", err)
	}
	if _, err := svc.UpdateOnboarding(ctx, session.ID, onboarding.Patch{Name: strPtr("Ana")}); err != nil {
		t.Fatalf("update: %v", err)
	}
	draft, err := svc.NextStep(ctx, session.ID)
	if err != nil || draft.Step != onboarding.StepAgeSex {
		t.Fatalf("expected age/sex step, got %d err=%v", draft.Step, err)
	}
	draft, err = svc.PreviousStep(ctx, session.ID)
	if err != nil || draft.Step != onboarding.StepName {
		t.Fatalf("expected name step, got %d err=%v", draft.Step, err)
	}
}

func TestSessionService_ToggleRestriction(t *testing.T) {
	svc := newTestSessionService(t)
	ctx := context.Background()
	session, _ := svc.Create(ctx)

	draft, err := svc.ToggleRestriction(ctx, session.ID, onboarding.RestrictionGluten)
	if err != nil || len(draft.Restrictions) != 1 {
		t.Fatalf("expected gluten, got %+v err=%v", draft.Restrictions, err)
	}
	draft, _ = svc.ToggleRestriction(ctx, session.ID, onboarding.RestrictionNone)
	if len(draft.Restrictions) != 1 || draft.Restrictions[0] != onboarding.RestrictionNone {
		t.Fatalf("expected only none, got %+v", draft.Restrictions)
	}
	if _, err := svc.ToggleRestriction(ctx, session.ID, "shellfish"); !errors.Is(err, onboarding.ErrInvalidStep) {
		t.Fatalf("expected ErrInvalidStep, got %v", err)
	}
}

func TestSessionService_PreviewTargets(t *testing.T) {
	svc := newTestSessionService(t)
	ctx := context.Background()
	session, _ := svc.Create(ctx)
	_, _ = svc.UpdateOnboarding(ctx, session.ID, fullPatch("accessible"))

	targets, err := svc.PreviewTargets(ctx, session.ID)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if targets.ProteinGrams != 131 {
		t.Fatalf("unexpected preview: %+v", targets)
	}
}

func TestSessionService_AddMealValidation(t *testing.T) {
	svc := newTestSessionService(t)
	id := onboardedSession(t, svc, "accessible")

	cases := []struct {
		name  string
		input MealInput
	}{
		{"empty name", MealInput{Name: " ", Category: "lunch", Time: "12:00"}},
		{"unknown category", MealInput{Name: "Jantar", Category: "brunch", Time: "12:00"}},
		{"bad time", MealInput{Name: "Jantar", Category: "dinner", Time: "25:00"}},
		{"short time", MealInput{Name: "Jantar", Category: "dinner", Time: "9:00"}},
		{"negative macros", MealInput{Name: "Jantar", Category: "dinner", Time: "20:00", Macros: nutrition.Macros{Kcal: 100, Fat: -1}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.AddMeal(context.Background(), id, tc.input); !errors.Is(err, ErrInvalidMeal) {
				t.Fatalf("expected ErrInvalidMeal, got %v", err)
			}
		})
	}
}

func TestSessionService_AddMealRequiresProfile(t *testing.T) {
	svc := newTestSessionService(t)
	session, _ := svc.Create(context.Background())
	_, err := svc.AddMeal(context.Background(), session.ID, MealInput{Name: "Jantar", Category: "dinner", Time: "20:00"})
	if !errors.Is(err, ErrProfileRequired) {
		t.Fatalf("expected ErrProfileRequired, got %v", err)
	}
}

func TestSessionService_AddMealUpdatesTotals(t *testing.T) {
	svc := newTestSessionService(t)
	id := onboardedSession(t, svc, "accessible")
	ctx := context.Background()

	before, err := svc.DayTotals(ctx, id)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if before.Consumed.Kcal != 985 || before.Remaining.Kcal != 761 || before.Remaining.Protein != 63 {
		t.Fatalf("unexpected seeded totals: %+v", before)
	}

	meal, err := svc.AddMeal(ctx, id, MealInput{Name: "Jantar", Category: "Dinner", Time: "20:00", Macros: nutrition.Macros{Kcal: 400, Protein: 30, Carbs: 40, Fat: 12}})
	if err != nil {
		t.Fatalf("add meal: %v", err)
	}
	if meal.Icon != "moon" || meal.Category != catalog.Dinner {
		t.Fatalf("unexpected meal view: %+v", meal)
	}

	after, _ := svc.DayTotals(ctx, id)
	if after.Consumed.Kcal != 1385 || after.Remaining.Kcal != 361 {
		t.Fatalf("unexpected totals: %+v", after)
	}

	got, err := svc.Meal(ctx, id, meal.ID)
	if err != nil || got.Name != "Jantar" {
		t.Fatalf("expected meal, got %+v err=%v", got, err)
	}
}

func TestSessionService_RemoveMealLeavesDetail(t *testing.T) {
	svc := newTestSessionService(t)
	id := onboardedSession(t, svc, "accessible")
	ctx := context.Background()

	session, _ := svc.Get(ctx, id)
	mealID := session.Diary[0].ID
	if _, err := svc.Dispatch(ctx, id, navigation.Event{Type: navigation.EventOpenMeal, MealID: mealID}); err != nil {
		t.Fatalf("open meal: %v", err)
	}
	if err := svc.RemoveMeal(ctx, id, mealID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	session, _ = svc.Get(ctx, id)
	if len(session.Diary) != 2 || session.Navigation.Screen != navigation.ScreenDashboard || session.Navigation.SelectedMeal != "" {
		t.Fatalf("unexpected session after remove: diary=%d nav=%+v", len(session.Diary), session.Navigation)
	}
	if err := svc.RemoveMeal(ctx, id, mealID); !errors.Is(err, ErrMealNotFound) {
		t.Fatalf("expected ErrMealNotFound, got %v", err)
	}
}

func TestSessionService_OpenUnknownMeal(t *testing.T) {
	svc := newTestSessionService(t)
	id := onboardedSession(t, svc, "accessible")
	_, err := svc.Dispatch(context.Background(), id, navigation.Event{Type: navigation.EventOpenMeal, MealID: "nope"})
	if !errors.Is(err, ErrMealNotFound) {
		t.Fatalf("expected ErrMealNotFound, got %v", err)
	}
}

func TestSessionService_AddWaterCapsAtGoal(t *testing.T) {
	svc := newTestSessionService(t)
	session, _ := svc.Create(context.Background())
	ctx := context.Background()

	var view WaterView
	var err error
	for i := 0; i < 3; i++ {
		view, err = svc.AddWater(ctx, session.ID, 750)
		if err != nil {
			t.Fatalf("add water: %v", err)
		}
	}
	if view.IntakeMl != 2000 || !view.GoalReached || view.RemainingMl != 0 {
		t.Fatalf("expected capped intake, got %+v", view)
	}
	if len(view.Logs) != 3 || view.Logs[2].AmountMl != 500 {
		t.Fatalf("unexpected logs: %+v", view.Logs)
	}

	view, _ = svc.AddWater(ctx, session.ID, 250)
	if view.IntakeMl != 2000 || len(view.Logs) != 3 {
		t.Fatalf("expected no-op at goal, got %+v", view)
	}

	if _, err := svc.AddWater(ctx, session.ID, 0); !errors.Is(err, ErrInvalidWaterAmount) {
		t.Fatalf("expected ErrInvalidWaterAmount, got %v", err)
	}
	if _, err := svc.AddWater(ctx, session.ID, -250); !errors.Is(err, ErrInvalidWaterAmount) {
		t.Fatalf("expected ErrInvalidWaterAmount, got %v", err)
	}
}

func TestSessionService_ConcurrentWaterIsSerialised(t *testing.T) {
	svc := newTestSessionService(t)
	session, _ := svc.Create(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.AddWater(context.Background(), session.ID, 100); err != nil {
				t.Errorf("add water: %v", err)
			}
		}()
	}
	wg.Wait()

	view, _ := svc.Water(context.Background(), session.ID)
	if view.IntakeMl != 1000 || len(view.Logs) != 10 {
		t.Fatalf("expected 1000ml in 10 logs, got %d in %d", view.IntakeMl, len(view.Logs))
	}
}

func TestSessionService_ShoppingByAisleAndToggle(t *testing.T) {
	svc := newTestSessionService(t)
	id := onboardedSession(t, svc, "accessible")
	ctx := context.Background()

	groups, err := svc.ShoppingByAisle(ctx, id)
	if err != nil {
		t.Fatalf("shopping: %v", err)
	}
	if len(groups) != 5 || groups[0].Aisle != "Hortifruti" || len(groups[0].Items) != 3 || groups[4].Aisle != "Mercearia" {
		t.Fatalf("unexpected groups: %+v", groups)
	}

	itemID := groups[1].Items[0].ID
	item, err := svc.ToggleShoppingItem(ctx, id, itemID)
	if err != nil || !item.Checked {
		t.Fatalf("expected checked item, got %+v err=%v", item, err)
	}
	item, _ = svc.ToggleShoppingItem(ctx, id, itemID)
	if item.Checked {
		t.Fatalf("expected second toggle to uncheck")
	}
	if _, err := svc.ToggleShoppingItem(ctx, id, "missing"); !errors.Is(err, ErrShoppingItemNotFound) {
		t.Fatalf("expected ErrShoppingItemNotFound, got %v", err)
	}
}

func TestSessionService_WeeklyMenuUsesTier(t *testing.T) {
	svc := newTestSessionService(t)
	// miercoles: sin dia el menu sigue abriendo en lunes
	svc.now = func() time.Time { return time.Date(2026, 1, 7, 9, 0, 0, 0, time.UTC) }
	ctx := context.Background()
	accessible := onboardedSession(t, svc, "accessible")
	premium := onboardedSession(t, svc, "premium")

	menu, err := svc.WeeklyMenu(ctx, accessible, "")
	if err != nil {
		t.Fatalf("menu: %v", err)
	}
	if menu.Day != catalog.Monday || menu.Meals[0].Description != "Pão integral com ovo mexido e banana" {
		t.Fatalf("unexpected accessible menu: %+v", menu)
	}

	menu, err = svc.WeeklyMenu(ctx, premium, "segunda")
	if err != nil {
		t.Fatalf("menu: %v", err)
	}
	if menu.Tier != onboarding.TierPremium || menu.Meals[1].Description != "Salmão grelhado com quinoa e legumes no vapor" {
		t.Fatalf("unexpected premium menu: %+v", menu)
	}
	if menu.Meals[2].Description != "Iogurte natural com granola" {
		t.Fatalf("expected accessible fallback for snack, got %q", menu.Meals[2].Description)
	}

	if _, err := svc.WeeklyMenu(ctx, premium, "someday"); !errors.Is(err, catalog.ErrUnknownDay) {
		t.Fatalf("expected ErrUnknownDay, got %v", err)
	}
}

func TestSessionService_Dashboard(t *testing.T) {
	svc := newTestSessionService(t)
	id := onboardedSession(t, svc, "premium")
	ctx := context.Background()

	if _, err := svc.AddMeal(ctx, id, MealInput{Name: "Jantar", Category: "dinner", Time: "20:00"}); err != nil {
		t.Fatalf("add meal: %v", err)
	}
	if _, err := svc.SetDarkMode(ctx, id, true); err != nil {
		t.Fatalf("dark mode: %v", err)
	}

	dash, err := svc.Dashboard(ctx, id)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(dash.RecentMeals) != 3 || dash.RecentMeals[0].Icon != "coffee" {
		t.Fatalf("unexpected recent meals: %+v", dash.RecentMeals)
	}
	if dash.Theme.Primary != "#D4AF37" || !dash.DarkMode {
		t.Fatalf("unexpected theme/dark mode: %+v %v", dash.Theme, dash.DarkMode)
	}
	if len(dash.BottomNav) != 5 || dash.Totals.Consumed.Kcal != 985 {
		t.Fatalf("unexpected dashboard: %+v", dash)
	}
}

func TestSessionService_DashboardRequiresProfile(t *testing.T) {
	svc := newTestSessionService(t)
	session, _ := svc.Create(context.Background())
	if _, err := svc.Dashboard(context.Background(), session.ID); !errors.Is(err, ErrProfileRequired) {
		t.Fatalf("expected ErrProfileRequired, got %v", err)
	}
}

func TestSessionService_ScreenContent(t *testing.T) {
	svc := newTestSessionService(t)
	p, err := svc.ScreenContent("Camera")
	if err != nil || p.Title == "" {
		t.Fatalf("expected camera placeholder, got %+v err=%v", p, err)
	}
	if _, err := svc.ScreenContent("diary"); !errors.Is(err, ErrScreenNotFound) {
		t.Fatalf("expected ErrScreenNotFound, got %v", err)
	}
	_, err = svc.ScreenContent("cardapio")
	if !errors.Is(err, ErrScreenNotFound) || !strings.Contains(err.Error(), "unknown screen") {
		t.Fatalf("expected unknown screen error, got %v", err)
	}
}
