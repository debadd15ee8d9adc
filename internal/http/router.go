package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ginutri/internal/metrics"
	"ginutri/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	gatherer prometheus.Gatherer,
	m *metrics.Metrics,
	tokens *service.SessionTokenService,
	calcH *CalculatorHandler,
	sessionH *SessionHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery, metricas y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), metricsMiddleware(m), jsonContentTypeMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	r.POST("/calculate", calcH.Calculate)
	r.POST("/sessions", sessionH.CreateSession)

	auth := r.Group("", SessionAuthMiddleware(tokens))
	auth.GET("/session", sessionH.GetSession)
	auth.POST("/session/events", sessionH.Dispatch)
	auth.PATCH("/session/preferences", sessionH.UpdatePreferences)

	ob := auth.Group("/onboarding")
	ob.GET("", sessionH.GetOnboarding)
	ob.PATCH("", sessionH.UpdateOnboarding)
	ob.POST("/restrictions", sessionH.ToggleRestriction)
	ob.POST("/next", sessionH.NextStep)
	ob.POST("/back", sessionH.PreviousStep)
	ob.GET("/preview", sessionH.PreviewTargets)
	ob.POST("/complete", sessionH.CompleteOnboarding)

	auth.GET("/dashboard", sessionH.Dashboard)

	diary := auth.Group("/diary")
	diary.GET("", sessionH.ListDiary)
	diary.POST("", sessionH.AddMeal)
	diary.GET("/:id", sessionH.GetMeal)
	diary.DELETE("/:id", sessionH.RemoveMeal)

	auth.GET("/shopping", sessionH.Shopping)
	auth.POST("/shopping/:id/toggle", sessionH.ToggleShoppingItem)

	auth.GET("/water", sessionH.Water)
	auth.POST("/water", sessionH.AddWater)

	auth.GET("/menu", sessionH.WeeklyMenu)
	auth.GET("/screens/:screen", sessionH.Screen)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// metricsMiddleware observa la duracion por ruta registrada, no por path crudo.
func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
