package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabasePath string

	// Strava API configuration
	StravaClientID     string
	StravaClientSecret string
	StravaRefreshToken string

	// Apple Health import configuration
	HealthCSVPath string

	// Metrics configuration; empty disables the listener
	MetricsAddr string

	// Logging configuration
	LogLevel string
}

// Load reads configuration from a .env file (if present) and the
// environment. It fails fast if required variables are missing.
func Load() (*Config, error) {
	// A missing .env file is fine; the environment may carry everything.
	_ = godotenv.Load()

	cfg := &Config{
		// Optional values with defaults
		DatabasePath:  getEnv("DATABASE_PATH", "./database.db"),
		HealthCSVPath: getEnv("HEALTH_CSV_PATH", "./health_export_data.csv"),
		MetricsAddr:   getEnv("METRICS_ADDR", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	// Required values
	var missingVars []string

	cfg.StravaClientID = os.Getenv("STRAVA_CLIENT_ID")
	if cfg.StravaClientID == "" {
		missingVars = append(missingVars, "STRAVA_CLIENT_ID")
	}

	cfg.StravaClientSecret = os.Getenv("STRAVA_CLIENT_SECRET")
	if cfg.StravaClientSecret == "" {
		missingVars = append(missingVars, "STRAVA_CLIENT_SECRET")
	}

	cfg.StravaRefreshToken = os.Getenv("STRAVA_REFRESH_TOKEN")
	if cfg.StravaRefreshToken == "" {
		missingVars = append(missingVars, "STRAVA_REFRESH_TOKEN")
	}

	if len(missingVars) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
