package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"costwise-hq/atlas/pkg/costs"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("ListenAddress = %q, want %q", cfg.Server.ListenAddress, DefaultListenAddress)
	}
	if cfg.Currency.Display != "USD" {
		t.Errorf("Currency.Display = %q, want USD", cfg.Currency.Display)
	}
	if cfg.FreeTier.AzureMonthlyHours != 750 {
		t.Errorf("AzureMonthlyHours = %v, want 750", cfg.FreeTier.AzureMonthlyHours)
	}
	if cfg.FreeTier.GCPCreditAmount != 300 {
		t.Errorf("GCPCreditAmount = %v, want 300", cfg.FreeTier.GCPCreditAmount)
	}
	if cfg.Orchestrator.MaxConcurrentFetches != 12 {
		t.Errorf("MaxConcurrentFetches = %d, want 12", cfg.Orchestrator.MaxConcurrentFetches)
	}
	if cfg.Orchestrator.FetchTimeout != 30*time.Second {
		t.Errorf("FetchTimeout = %v, want 30s", cfg.Orchestrator.FetchTimeout)
	}
	if cfg.Orchestrator.RequestTimeout != 2*time.Minute {
		t.Errorf("RequestTimeout = %v, want 2m", cfg.Orchestrator.RequestTimeout)
	}
	if cfg.Budget.Backend != "sqlite" {
		t.Errorf("Budget.Backend = %q, want sqlite", cfg.Budget.Backend)
	}
	if cfg.Scheduler.CronSpec != "0 * * * *" {
		t.Errorf("CronSpec = %q, want hourly", cfg.Scheduler.CronSpec)
	}
	if cfg.Telemetry.Logging.Level != "info" || cfg.Telemetry.Logging.Format != "json" {
		t.Errorf("logging defaults = %q/%q, want info/json",
			cfg.Telemetry.Logging.Level, cfg.Telemetry.Logging.Format)
	}
	if cfg.Telemetry.Metrics.Enabled == nil || !*cfg.Telemetry.Metrics.Enabled {
		t.Error("metrics should default to enabled")
	}
	// Rates watching is pointless without a rates file.
	if cfg.Currency.WatchRates == nil || *cfg.Currency.WatchRates {
		t.Error("WatchRates should default to false without a rates file")
	}
}

func TestAccountRefs(t *testing.T) {
	inactive := false
	cfg := &Config{
		Accounts: []AccountConfig{
			{Provider: "AWS", AccountID: "111", Name: "Prod"},
			{Provider: "NCP", AccountID: "n1", Name: "NCP Main", Active: &inactive},
			{Provider: "NOPE", AccountID: "x", Name: "Bad"},
		},
	}

	refs := cfg.AccountRefs()
	if len(refs) != 2 {
		t.Fatalf("got %d refs, want 2 (unknown provider skipped)", len(refs))
	}
	if refs[0].Provider != costs.ProviderAWS || !refs[0].Active {
		t.Errorf("refs[0] = %+v, want active AWS account", refs[0])
	}
	if refs[1].Provider != costs.ProviderNCP || refs[1].Active {
		t.Errorf("refs[1] = %+v, want inactive NCP account", refs[1])
	}
}

func TestLoadConfig(t *testing.T) {
	content := `
server:
  listen_address: "0.0.0.0:9090"
accounts:
  - provider: AWS
    account_id: "111122223333"
    name: Production
  - provider: NCP
    account_id: ncp-main
    name: NCP Main
currency:
  display: KRW
orchestrator:
  max_concurrent_fetches: 4
  fetch_timeout: 10s
budget:
  backend: memory
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.ListenAddress != "0.0.0.0:9090" {
		t.Errorf("ListenAddress = %q, want 0.0.0.0:9090", cfg.Server.ListenAddress)
	}
	if cfg.Currency.Display != "KRW" {
		t.Errorf("Display = %q, want KRW", cfg.Currency.Display)
	}
	if cfg.Orchestrator.MaxConcurrentFetches != 4 {
		t.Errorf("MaxConcurrentFetches = %d, want 4", cfg.Orchestrator.MaxConcurrentFetches)
	}
	if cfg.Orchestrator.FetchTimeout != 10*time.Second {
		t.Errorf("FetchTimeout = %v, want 10s", cfg.Orchestrator.FetchTimeout)
	}
	// Defaults fill the unset sections.
	if cfg.Orchestrator.RequestTimeout != 2*time.Minute {
		t.Errorf("RequestTimeout = %v, want 2m default", cfg.Orchestrator.RequestTimeout)
	}
	if len(cfg.Accounts) != 2 {
		t.Errorf("got %d accounts, want 2", len(cfg.Accounts))
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	content := `
server:
  listen_address: "127.0.0.1:8080"
currency:
  display: USD
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("ATLAS_SERVER_LISTEN_ADDRESS", "0.0.0.0:7070")
	t.Setenv("ATLAS_CURRENCY_DISPLAY", "EUR")
	t.Setenv("ATLAS_ORCHESTRATOR_MAX_CONCURRENT_FETCHES", "3")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides failed: %v", err)
	}
	if cfg.Server.ListenAddress != "0.0.0.0:7070" {
		t.Errorf("ListenAddress = %q, want env override 0.0.0.0:7070", cfg.Server.ListenAddress)
	}
	if cfg.Currency.Display != "EUR" {
		t.Errorf("Display = %q, want env override EUR", cfg.Currency.Display)
	}
	if cfg.Orchestrator.MaxConcurrentFetches != 3 {
		t.Errorf("MaxConcurrentFetches = %d, want env override 3", cfg.Orchestrator.MaxConcurrentFetches)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}
