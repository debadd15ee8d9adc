package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ginutri/internal/catalog"
	"ginutri/internal/navigation"
	"ginutri/internal/nutrition"
	"ginutri/internal/onboarding"
	"ginutri/internal/service"
)

// statusFor traduce los errores de dominio a codigos HTTP.
func statusFor(err error) int {
	switch {
	case errors.Is(err, nutrition.ErrInvalidInput),
		errors.Is(err, onboarding.ErrInvalidStep),
		errors.Is(err, service.ErrInvalidMeal),
		errors.Is(err, service.ErrInvalidWaterAmount),
		errors.Is(err, catalog.ErrUnknownDay):
		return http.StatusBadRequest
	case errors.Is(err, navigation.ErrInvalidTransition),
		errors.Is(err, service.ErrProfileRequired):
		return http.StatusConflict
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrMealNotFound),
		errors.Is(err, service.ErrShoppingItemNotFound),
		errors.Is(err, service.ErrScreenNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// respondError loguea y responde. Los 500 no exponen el detalle.
func respondError(c *gin.Context, logger *zap.Logger, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(op+" failed", zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	logger.Warn(op+" rejected", zap.Int("status", status), zap.Error(err))
	c.JSON(status, gin.H{"error": err.Error()})
}
