package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// Clear any env vars that might affect defaults
	for _, key := range []string{"FMP_BASE_URL", "FMP_API_KEY", "DATABASE_URL", "HTTP_PORT", "FMP_RETRY_MAX", "CACHE_MAX_AGE"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()

	if cfg.FMPBaseURL != "https://financialmodelingprep.com/stable" {
		t.Errorf("FMPBaseURL = %q, want default", cfg.FMPBaseURL)
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q, want empty", cfg.DatabaseURL)
	}
	if cfg.FMPRetryMax != 5 {
		t.Errorf("FMPRetryMax = %d, want 5", cfg.FMPRetryMax)
	}
	if cfg.FMPRetryBaseDelay != 2*time.Second {
		t.Errorf("FMPRetryBaseDelay = %v, want 2s", cfg.FMPRetryBaseDelay)
	}
	if cfg.CacheMaxAge != 24*time.Hour {
		t.Errorf("CacheMaxAge = %v, want 24h", cfg.CacheMaxAge)
	}
	if cfg.RefreshWorkerInterval != 6*time.Hour {
		t.Errorf("RefreshWorkerInterval = %v, want 6h", cfg.RefreshWorkerInterval)
	}
	if cfg.HTTPPort != "8080" {
		t.Errorf("HTTPPort = %q, want 8080", cfg.HTTPPort)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("FMP_BASE_URL", "https://fmp.example.com/v4")
	t.Setenv("FMP_API_KEY", "test-key")
	t.Setenv("DATABASE_URL", "postgres://localhost/testdb")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("FMP_RETRY_MAX", "10")
	t.Setenv("FMP_RETRY_BASE_DELAY", "5s")
	t.Setenv("CACHE_MAX_AGE", "1h")

	cfg := Load()

	if cfg.FMPBaseURL != "https://fmp.example.com/v4" {
		t.Errorf("FMPBaseURL = %q, want override", cfg.FMPBaseURL)
	}
	if cfg.FMPAPIKey != "test-key" {
		t.Errorf("FMPAPIKey = %q, want override", cfg.FMPAPIKey)
	}
	if cfg.DatabaseURL != "postgres://localhost/testdb" {
		t.Errorf("DatabaseURL = %q, want override", cfg.DatabaseURL)
	}
	if cfg.HTTPPort != "9090" {
		t.Errorf("HTTPPort = %q, want 9090", cfg.HTTPPort)
	}
	if cfg.FMPRetryMax != 10 {
		t.Errorf("FMPRetryMax = %d, want 10", cfg.FMPRetryMax)
	}
	if cfg.FMPRetryBaseDelay != 5*time.Second {
		t.Errorf("FMPRetryBaseDelay = %v, want 5s", cfg.FMPRetryBaseDelay)
	}
	if cfg.CacheMaxAge != time.Hour {
		t.Errorf("CacheMaxAge = %v, want 1h", cfg.CacheMaxAge)
	}
}

func TestLoadInvalidEnvFallsBackToDefault(t *testing.T) {
	t.Setenv("FMP_RETRY_MAX", "not-a-number")
	t.Setenv("FMP_RETRY_BASE_DELAY", "invalid-duration")

	cfg := Load()

	if cfg.FMPRetryMax != 5 {
		t.Errorf("FMPRetryMax = %d, want default 5 on invalid input", cfg.FMPRetryMax)
	}
	if cfg.FMPRetryBaseDelay != 2*time.Second {
		t.Errorf("FMPRetryBaseDelay = %v, want default 2s on invalid input", cfg.FMPRetryBaseDelay)
	}
}
