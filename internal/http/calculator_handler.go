package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ginutri/internal/metrics"
	"ginutri/internal/nutrition"
)

// CalculatorHandler expone la calculadora sin sesion.
type CalculatorHandler struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewCalculatorHandler(logger *zap.Logger, m *metrics.Metrics) *CalculatorHandler {
	return &CalculatorHandler{logger: logger, metrics: m}
}

type calculateRequest struct {
	Sex           string  `json:"sex"`
	WeightKg      float64 `json:"weight_kg"`
	HeightCm      float64 `json:"height_cm"`
	AgeYears      int     `json:"age_years"`
	ActivityLevel string  `json:"activity_level"`
	Goal          string  `json:"goal"`
}

func (r calculateRequest) answers() (nutrition.Answers, error) {
	sex, err := nutrition.ParseSex(r.Sex)
	if err != nil {
		return nutrition.Answers{}, err
	}
	level, err := nutrition.ParseActivityLevel(r.ActivityLevel)
	if err != nil {
		return nutrition.Answers{}, err
	}
	goal, err := nutrition.ParseGoal(r.Goal)
	if err != nil {
		return nutrition.Answers{}, err
	}
	return nutrition.Answers{
		Sex:           sex,
		WeightKg:      r.WeightKg,
		HeightCm:      r.HeightCm,
		AgeYears:      r.AgeYears,
		ActivityLevel: level,
		Goal:          goal,
	}, nil
}

// Calculate maneja POST /calculate.
func (h *CalculatorHandler) Calculate(c *gin.Context) {
	var req calculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid calculate request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	answers, err := req.answers()
	if err != nil {
		h.metrics.ObserveCalculation(err)
		respondError(c, h.logger, "calculate", err)
		return
	}
	targets, err := nutrition.Calculate(answers)
	h.metrics.ObserveCalculation(err)
	if err != nil {
		respondError(c, h.logger, "calculate", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"targets":      targets,
		"bmi_category": nutrition.BMICategory(targets.BMI),
	})
}
