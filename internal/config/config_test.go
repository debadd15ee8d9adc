package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "dev-secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.HTTPPort != "8080" || cfg.WaterGoalMl != 2000 || cfg.SessionRateLimit != 30 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SessionTTL() != 4*time.Hour {
		t.Fatalf("expected 4h ttl, got %v", cfg.SessionTTL())
	}
	if cfg.SessionRateWindow() != time.Minute {
		t.Fatalf("expected 1m window, got %v", cfg.SessionRateWindow())
	}
}

func TestLoadConfig_RequiresSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error without SESSION_SECRET")
	}
}
