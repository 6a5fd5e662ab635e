// Package config loads application settings from the environment.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	FMPBaseURL            string
	FMPAPIKey             string
	FMPRetryMax           int
	FMPRetryBaseDelay     time.Duration
	DatabaseURL           string
	CacheMaxAge           time.Duration
	RefreshWorkerInterval time.Duration
	HTTPPort              string
	AdminAPIKey           string
	SheetsSpreadsheetID   string
	SheetsCredentialsJSON string
	ExportDir             string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		FMPBaseURL:            envOrDefault("FMP_BASE_URL", "https://financialmodelingprep.com/stable"),
		FMPAPIKey:             envOrDefaultWarn("FMP_API_KEY", ""),
		FMPRetryMax:           envOrDefaultInt("FMP_RETRY_MAX", 5),
		FMPRetryBaseDelay:     envOrDefaultDuration("FMP_RETRY_BASE_DELAY", 2*time.Second),
		DatabaseURL:           envOrDefault("DATABASE_URL", ""),
		CacheMaxAge:           envOrDefaultDuration("CACHE_MAX_AGE", 24*time.Hour),
		RefreshWorkerInterval: envOrDefaultDuration("REFRESH_WORKER_INTERVAL", 6*time.Hour),
		HTTPPort:              envOrDefault("HTTP_PORT", "8080"),
		AdminAPIKey:           envOrDefault("ADMIN_API_KEY", ""),
		SheetsSpreadsheetID:   envOrDefault("SHEETS_SPREADSHEET_ID", ""),
		SheetsCredentialsJSON: envOrDefault("SHEETS_CREDENTIALS_JSON", ""),
		ExportDir:             envOrDefault("EXPORT_DIR", "."),
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultWarn(key, defaultVal string) string {
	v := envOrDefault(key, defaultVal)
	if v == "" {
		slog.Warn("required env var not set", "key", key)
	}
	return v
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}
