package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ginutri/internal/navigation"
	"ginutri/internal/onboarding"
	"ginutri/internal/service"
)

// SessionHandler mantiene dependencias para los endpoints de sesion.
type SessionHandler struct {
	logger   *zap.Logger
	sessions *service.SessionService
	tokens   *service.SessionTokenService
	limiter  service.RateLimiter
}

func NewSessionHandler(logger *zap.Logger, sessions *service.SessionService, tokens *service.SessionTokenService, limiter service.RateLimiter) *SessionHandler {
	return &SessionHandler{
		logger:   logger,
		sessions: sessions,
		tokens:   tokens,
		limiter:  limiter,
	}
}

// CreateSession maneja POST /sessions.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	if h.limiter != nil && !h.limiter.Allow(c.ClientIP()) {
		respondError(c, h.logger, "create session", service.ErrRateLimited)
		return
	}

	session, err := h.sessions.Create(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "create session", err)
		return
	}
	token, expiresAt, err := h.tokens.Issue(session.ID)
	if err != nil {
		respondError(c, h.logger, "issue session token", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"session":    session,
	})
}

// sessionID lee el id que dejo SessionAuthMiddleware.
func (h *SessionHandler) sessionID(c *gin.Context) (string, bool) {
	id, ok := GetSessionID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return "", false
	}
	return id, true
}

// GetSession maneja GET /session.
func (h *SessionHandler) GetSession(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	session, err := h.sessions.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "get session", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// Dispatch maneja POST /session/events.
func (h *SessionHandler) Dispatch(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req navigation.Event
	if err := c.ShouldBindJSON(&req); err != nil || req.Type == "" {
		h.logger.Warn("invalid event request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	session, err := h.sessions.Dispatch(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, "dispatch event", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"navigation": session.Navigation})
}

// UpdatePreferences maneja PATCH /session/preferences.
func (h *SessionHandler) UpdatePreferences(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req struct {
		DarkMode *bool `json:"dark_mode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid preferences request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	session, err := h.sessions.SetDarkMode(c.Request.Context(), id, *req.DarkMode)
	if err != nil {
		respondError(c, h.logger, "update preferences", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dark_mode": session.DarkMode})
}

// GetOnboarding maneja GET /onboarding.
func (h *SessionHandler) GetOnboarding(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	session, err := h.sessions.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "get onboarding", err)
		return
	}
	h.respondDraft(c, session.Onboarding)
}

// UpdateOnboarding maneja PATCH /onboarding.
func (h *SessionHandler) UpdateOnboarding(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req onboarding.Patch
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid onboarding patch", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	draft, err := h.sessions.UpdateOnboarding(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, "update onboarding", err)
		return
	}
	h.respondDraft(c, draft)
}

// ToggleRestriction maneja POST /onboarding/restrictions.
func (h *SessionHandler) ToggleRestriction(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req struct {
		Restriction string `json:"restriction" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid restriction request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	draft, err := h.sessions.ToggleRestriction(c.Request.Context(), id, onboarding.Restriction(req.Restriction))
	if err != nil {
		respondError(c, h.logger, "toggle restriction", err)
		return
	}
	h.respondDraft(c, draft)
}

// NextStep maneja POST /onboarding/next.
func (h *SessionHandler) NextStep(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	draft, err := h.sessions.NextStep(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "next onboarding step", err)
		return
	}
	h.respondDraft(c, draft)
}

// PreviousStep maneja POST /onboarding/back.
func (h *SessionHandler) PreviousStep(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	draft, err := h.sessions.PreviousStep(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "previous onboarding step", err)
		return
	}
	h.respondDraft(c, draft)
}

func (h *SessionHandler) respondDraft(c *gin.Context, draft onboarding.Draft) {
	c.JSON(http.StatusOK, gin.H{
		"onboarding": draft,
		"progress":   draft.Progress(),
	})
}

// PreviewTargets maneja GET /onboarding/preview.
func (h *SessionHandler) PreviewTargets(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	targets, err := h.sessions.PreviewTargets(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "preview targets", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"targets": targets})
}

// CompleteOnboarding maneja POST /onboarding/complete.
func (h *SessionHandler) CompleteOnboarding(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	session, err := h.sessions.CompleteOnboarding(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "complete onboarding", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"profile":    session.Profile,
		"navigation": session.Navigation,
	})
}

// Dashboard maneja GET /dashboard.
func (h *SessionHandler) Dashboard(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	dash, err := h.sessions.Dashboard(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "dashboard", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dashboard": dash})
}

// ListDiary maneja GET /diary.
func (h *SessionHandler) ListDiary(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	meals, err := h.sessions.Diary(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "list diary", err)
		return
	}
	resp := gin.H{"meals": meals}
	if totals, err := h.sessions.DayTotals(c.Request.Context(), id); err == nil {
		resp["totals"] = totals
	}
	c.JSON(http.StatusOK, resp)
}

// AddMeal maneja POST /diary.
func (h *SessionHandler) AddMeal(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req service.MealInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid meal request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	meal, err := h.sessions.AddMeal(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, "add meal", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"meal": meal})
}

// GetMeal maneja GET /diary/:id.
func (h *SessionHandler) GetMeal(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	meal, err := h.sessions.Meal(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "get meal", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meal": meal})
}

// RemoveMeal maneja DELETE /diary/:id.
func (h *SessionHandler) RemoveMeal(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	if err := h.sessions.RemoveMeal(c.Request.Context(), id, c.Param("id")); err != nil {
		respondError(c, h.logger, "remove meal", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Shopping maneja GET /shopping.
func (h *SessionHandler) Shopping(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	groups, err := h.sessions.ShoppingByAisle(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "shopping list", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"aisles": groups})
}

// ToggleShoppingItem maneja POST /shopping/:id/toggle.
func (h *SessionHandler) ToggleShoppingItem(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	item, err := h.sessions.ToggleShoppingItem(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "toggle shopping item", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

// Water maneja GET /water.
func (h *SessionHandler) Water(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	water, err := h.sessions.Water(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "water", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"water": water})
}

// AddWater maneja POST /water.
func (h *SessionHandler) AddWater(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req struct {
		AmountMl int `json:"amount_ml"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid water request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	water, err := h.sessions.AddWater(c.Request.Context(), id, req.AmountMl)
	if err != nil {
		respondError(c, h.logger, "add water", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"water": water})
}

// WeeklyMenu maneja GET /menu?day=.
func (h *SessionHandler) WeeklyMenu(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	menu, err := h.sessions.WeeklyMenu(c.Request.Context(), id, c.Query("day"))
	if err != nil {
		respondError(c, h.logger, "weekly menu", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"menu": menu})
}

// Screen maneja GET /screens/:screen.
func (h *SessionHandler) Screen(c *gin.Context) {
	content, err := h.sessions.ScreenContent(c.Param("screen"))
	if err != nil {
		respondError(c, h.logger, "screen content", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"screen": c.Param("screen"), "content": content})
}
