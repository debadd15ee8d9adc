package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics agrupa los contadores Prometheus del servicio.
type Metrics struct {
	RequestDuration      *prometheus.HistogramVec
	Calculations         *prometheus.CounterVec
	SessionsCreated      prometheus.Counter
	OnboardingsCompleted *prometheus.CounterVec
	MealsLogged          prometheus.Counter
	WaterAddedMl         prometheus.Counter
}

// New registra las metricas en reg. Con un registry propio los tests pueden crear varias instancias.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ginutri_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),

		Calculations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ginutri_calculations_total",
			Help: "Nutrition target calculations by result",
		}, []string{"result"}),

		SessionsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "ginutri_sessions_created_total",
			Help: "Total number of sessions created",
		}),

		OnboardingsCompleted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ginutri_onboardings_completed_total",
			Help: "Completed onboardings by goal",
		}, []string{"goal"}),

		MealsLogged: f.NewCounter(prometheus.CounterOpts{
			Name: "ginutri_meals_logged_total",
			Help: "Meals added to diaries",
		}),

		WaterAddedMl: f.NewCounter(prometheus.CounterOpts{
			Name: "ginutri_water_added_ml_total",
			Help: "Water intake recorded, in millilitres",
		}),
	}
}

// ObserveCalculation cuenta un calculo; acepta receptor nil.
func (m *Metrics) ObserveCalculation(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "invalid"
	}
	m.Calculations.WithLabelValues(result).Inc()
}

func (m *Metrics) SessionCreated() {
	if m == nil {
		return
	}
	m.SessionsCreated.Inc()
}

func (m *Metrics) OnboardingCompleted(goal string) {
	if m == nil {
		return
	}
	m.OnboardingsCompleted.WithLabelValues(goal).Inc()
}

func (m *Metrics) MealLogged() {
	if m == nil {
		return
	}
	m.MealsLogged.Inc()
}

func (m *Metrics) WaterAdded(ml int) {
	if m == nil || ml <= 0 {
		return
	}
	m.WaterAddedMl.Add(float64(ml))
}
