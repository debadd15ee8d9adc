package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuracion del servicio.
type Config struct {
	HTTPPort                 string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL              string `env:"DATABASE_URL"`
	RedisAddr                string `env:"REDIS_ADDR"`
	RedisPassword            string `env:"REDIS_PASSWORD"`
	RedisDB                  int    `env:"REDIS_DB" envDefault:"0"`
	SessionSecret            string `env:"SESSION_SECRET,required,notEmpty"`
	SessionTTLMinutes        int    `env:"SESSION_TTL_MINUTES" envDefault:"240"`
	WaterGoalMl              int    `env:"WATER_GOAL_ML" envDefault:"2000"`
	SessionRateLimit         int    `env:"SESSION_RATE_LIMIT" envDefault:"30"`
	SessionRateWindowSeconds int    `env:"SESSION_RATE_WINDOW_SECONDS" envDefault:"60"`
	LogDevelopment           bool   `env:"LOG_DEVELOPMENT" envDefault:"false"`
}

// LoadConfig carga la configuracion desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) SessionTTL() time.Duration {
	if c.SessionTTLMinutes <= 0 {
		return 4 * time.Hour
	}
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

func (c *Config) SessionRateWindow() time.Duration {
	if c.SessionRateWindowSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.SessionRateWindowSeconds) * time.Second
}
