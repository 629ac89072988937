// Package config loads application configuration from environment variables
// and the accounts file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration loaded from environment
// variables. Everything has a default; the only required input is the
// accounts file itself.
type Config struct {
	BaseURL      string
	DBPath       string
	AccountsPath string
	HTTPTimeout  time.Duration
	MaxRetries   int
	BackoffUnit  time.Duration
}

// Load reads configuration from environment variables and returns a
// validated Config. Optional variables with defaults:
// ECUSTRUN_BASE_URL (https://run.ecust.edu.cn),
// ECUSTRUN_DB_PATH (ecustrun.db), ECUSTRUN_ACCOUNTS_PATH (accounts.toml),
// ECUSTRUN_HTTP_TIMEOUT (30s), ECUSTRUN_MAX_RETRIES (3),
// ECUSTRUN_BACKOFF_UNIT (2s).
func Load() (*Config, error) {
	cfg := &Config{
		BaseURL:      "https://run.ecust.edu.cn",
		DBPath:       "ecustrun.db",
		AccountsPath: "accounts.toml",
		HTTPTimeout:  30 * time.Second,
		MaxRetries:   3,
		BackoffUnit:  2 * time.Second,
	}

	if v, ok := os.LookupEnv("ECUSTRUN_BASE_URL"); ok && v != "" {
		cfg.BaseURL = v
	}
	if v, ok := os.LookupEnv("ECUSTRUN_DB_PATH"); ok && v != "" {
		cfg.DBPath = v
	}
	if v, ok := os.LookupEnv("ECUSTRUN_ACCOUNTS_PATH"); ok && v != "" {
		cfg.AccountsPath = v
	}

	if v, ok := os.LookupEnv("ECUSTRUN_HTTP_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("ECUSTRUN_HTTP_TIMEOUT has invalid duration %q: %w", v, err)
		}
		cfg.HTTPTimeout = parsed
	}

	if v, ok := os.LookupEnv("ECUSTRUN_MAX_RETRIES"); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("ECUSTRUN_MAX_RETRIES must be a non-negative integer, got %q", v)
		}
		cfg.MaxRetries = parsed
	}

	if v, ok := os.LookupEnv("ECUSTRUN_BACKOFF_UNIT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("ECUSTRUN_BACKOFF_UNIT has invalid duration %q: %w", v, err)
		}
		cfg.BackoffUnit = parsed
	}

	return cfg, nil
}
