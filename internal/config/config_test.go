package config

import (
	"strings"
	"testing"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("STRAVA_CLIENT_ID", "client_id")
	t.Setenv("STRAVA_CLIENT_SECRET", "client_secret")
	t.Setenv("STRAVA_REFRESH_TOKEN", "refresh_token")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("HEALTH_CSV_PATH", "")
	t.Setenv("METRICS_ADDR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.DatabasePath != "./database.db" {
		t.Errorf("Expected default database path, got %s", cfg.DatabasePath)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.HealthCSVPath != "./health_export_data.csv" {
		t.Errorf("Expected default health csv path, got %s", cfg.HealthCSVPath)
	}
	if cfg.MetricsAddr != "" {
		t.Errorf("Expected metrics disabled by default, got %s", cfg.MetricsAddr)
	}
	if cfg.StravaClientID != "client_id" {
		t.Errorf("Expected client id to be read, got %s", cfg.StravaClientID)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DATABASE_PATH", "/tmp/other.db")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("METRICS_ADDR", ":9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.DatabasePath != "/tmp/other.db" {
		t.Errorf("Expected overridden database path, got %s", cfg.DatabasePath)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected overridden log level, got %s", cfg.LogLevel)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("Expected overridden metrics addr, got %s", cfg.MetricsAddr)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("STRAVA_CLIENT_ID", "client_id")
	t.Setenv("STRAVA_CLIENT_SECRET", "")
	t.Setenv("STRAVA_REFRESH_TOKEN", "")

	_, err := Load()
	if err == nil {
		t.Fatal("Expected error for missing required variables")
	}

	// All missing variables are reported at once.
	msg := err.Error()
	if !strings.Contains(msg, "STRAVA_CLIENT_SECRET") || !strings.Contains(msg, "STRAVA_REFRESH_TOKEN") {
		t.Errorf("Expected both missing variables in error, got %q", msg)
	}
	if strings.Contains(msg, "STRAVA_CLIENT_ID") {
		t.Errorf("Expected present variable not to be reported, got %q", msg)
	}
}
