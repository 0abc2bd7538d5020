package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Environment variables follow the
// naming convention ATLAS_SECTION_FIELD (e.g., ATLAS_SERVER_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format ATLAS_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("ATLAS_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("ATLAS_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("ATLAS_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("ATLAS_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}

	// Currency overrides
	if val := os.Getenv("ATLAS_CURRENCY_DISPLAY"); val != "" {
		cfg.Currency.Display = val
	}
	if val := os.Getenv("ATLAS_CURRENCY_RATES_FILE"); val != "" {
		cfg.Currency.RatesFile = val
	}
	if val := os.Getenv("ATLAS_CURRENCY_WATCH_RATES"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Currency.WatchRates = &b
		}
	}

	// Orchestrator overrides
	if val := os.Getenv("ATLAS_ORCHESTRATOR_MAX_CONCURRENT_FETCHES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Orchestrator.MaxConcurrentFetches = i
		}
	}
	if val := os.Getenv("ATLAS_ORCHESTRATOR_FETCH_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Orchestrator.FetchTimeout = d
		}
	}
	if val := os.Getenv("ATLAS_ORCHESTRATOR_REQUEST_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Orchestrator.RequestTimeout = d
		}
	}

	// Budget overrides
	if val := os.Getenv("ATLAS_BUDGET_BACKEND"); val != "" {
		cfg.Budget.Backend = val
	}
	if val := os.Getenv("ATLAS_BUDGET_DB_PATH"); val != "" {
		cfg.Budget.DBPath = val
	}

	// Scheduler overrides
	if val := os.Getenv("ATLAS_SCHEDULER_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Scheduler.Enabled = &b
		}
	}
	if val := os.Getenv("ATLAS_SCHEDULER_CRON_SPEC"); val != "" {
		cfg.Scheduler.CronSpec = val
	}

	// Telemetry overrides
	if val := os.Getenv("ATLAS_LOG_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("ATLAS_LOG_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("ATLAS_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = &b
		}
	}
}
