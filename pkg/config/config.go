package config

import (
	"time"

	"costwise-hq/atlas/pkg/costs"
)

// Config is the root configuration structure for Atlas. It contains all
// configuration sections for the HTTP server, cloud accounts, provider
// collectors, currency conversion, free-tier baselines, the aggregation
// orchestrator, budget storage, the alert scheduler, and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and connection limits.
	Server ServerConfig `yaml:"server"`

	// Accounts lists the cloud accounts to fetch costs for.
	Accounts []AccountConfig `yaml:"accounts"`

	// Collectors contains per-provider collector configuration.
	// Keys are provider names ("AWS", "AZURE", "GCP", "NCP").
	Collectors map[string]CollectorConfig `yaml:"collectors"`

	// Currency contains display currency and exchange rate settings.
	Currency CurrencyConfig `yaml:"currency"`

	// FreeTier contains free-tier baseline overrides.
	FreeTier FreeTierConfig `yaml:"free_tier"`

	// Orchestrator contains fan-out concurrency and timeout settings.
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`

	// Budget contains budget settings storage configuration.
	Budget BudgetConfig `yaml:"budget"`

	// Scheduler contains the periodic alert evaluation schedule.
	Scheduler SchedulerConfig `yaml:"scheduler"`

	// Telemetry contains observability configuration including logging
	// and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP API server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. A zero or negative value means no timeout.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of
	// the response. Must comfortably exceed the orchestrator request
	// timeout or slow aggregations get cut off mid-response.
	// Default: 150s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next
	// request when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown before in-flight requests are dropped.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// AccountConfig is one connected cloud account.
type AccountConfig struct {
	// Provider is the cloud provider name ("AWS", "AZURE", "GCP", "NCP").
	Provider string `yaml:"provider"`

	// AccountID is the provider-native account identifier (AWS account
	// id, Azure subscription id, GCP project id, NCP member id).
	AccountID string `yaml:"account_id"`

	// Name is the display name for this account.
	Name string `yaml:"name"`

	// Active controls whether this account is fetched. Inactive accounts
	// stay configured but are skipped.
	// Default: true
	Active *bool `yaml:"active"`
}

// CollectorConfig contains configuration for one provider's collector.
type CollectorConfig struct {
	// Enabled controls whether this provider participates in aggregation.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Endpoint overrides the provider billing API base URL. Empty means
	// the provider default. Mostly useful for testing against fakes.
	Endpoint string `yaml:"endpoint"`

	// CredentialsFile is the path to the provider credentials file.
	CredentialsFile string `yaml:"credentials_file"`

	// Timeout is the per-call timeout for this provider's billing API.
	// Zero means the orchestrator fetch timeout applies.
	Timeout time.Duration `yaml:"timeout"`
}

// IsEnabled reports whether the provider participates in aggregation.
// An unset value means enabled.
func (c CollectorConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// CurrencyConfig contains currency conversion settings.
type CurrencyConfig struct {
	// Display is the currency all aggregated amounts are converted into.
	// Default: "USD"
	Display string `yaml:"display"`

	// RatesFile is an optional YAML file of exchange rates (units per
	// USD). Empty means the built-in defaults are used.
	RatesFile string `yaml:"rates_file"`

	// WatchRates reloads RatesFile on change without a restart.
	// Default: true when RatesFile is set
	WatchRates *bool `yaml:"watch_rates"`
}

// WatchEnabled reports whether the rates file should be watched for
// changes.
func (c CurrencyConfig) WatchEnabled() bool {
	return c.RatesFile != "" && (c.WatchRates == nil || *c.WatchRates)
}

// FreeTierConfig contains free-tier baseline overrides. Zero values
// mean the built-in baselines.
type FreeTierConfig struct {
	// AzureMonthlyHours is the monthly free hours for eligible Azure VM
	// sizes.
	// Default: 750
	AzureMonthlyHours float64 `yaml:"azure_monthly_hours"`

	// GCPCreditAmount is the free-tier credit amount assumed when a GCP
	// project reports usage without a limit.
	// Default: 300
	GCPCreditAmount float64 `yaml:"gcp_credit_amount"`

	// GCPCreditCurrency is the currency of GCPCreditAmount.
	// Default: "USD"
	GCPCreditCurrency string `yaml:"gcp_credit_currency"`
}

// OrchestratorConfig contains fan-out settings for cost collection.
type OrchestratorConfig struct {
	// MaxConcurrentFetches bounds how many collector calls run at once
	// across all providers and accounts.
	// Default: 12
	MaxConcurrentFetches int `yaml:"max_concurrent_fetches"`

	// FetchTimeout is the per-account collector call timeout.
	// Default: 30s
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// RequestTimeout bounds one whole aggregation pass, including the
	// previous-period fetch.
	// Default: 2m
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// BudgetConfig contains budget settings storage configuration.
type BudgetConfig struct {
	// Backend selects the settings store.
	// Options: "sqlite", "memory"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// DBPath is the SQLite database file path. Ignored for the memory
	// backend.
	// Default: "atlas-budgets.db"
	DBPath string `yaml:"db_path"`
}

// SchedulerConfig contains the periodic alert evaluation schedule.
type SchedulerConfig struct {
	// Enabled controls whether scheduled alert sweeps run.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// CronSpec is the evaluation schedule in cron syntax.
	// Default: "0 * * * *" (hourly)
	CronSpec string `yaml:"cron_spec"`
}

// IsEnabled reports whether scheduled alert sweeps run. An unset value
// means enabled.
func (s SchedulerConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "atlas"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "costs"
	Subsystem string `yaml:"subsystem"`

	// FetchDurationBuckets defines histogram buckets for collector call
	// duration in seconds.
	// Default: [0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0]
	FetchDurationBuckets []float64 `yaml:"fetch_duration_buckets"`
}

// IsEnabled reports whether metrics collection is active. An unset
// value means enabled.
func (m MetricsConfig) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

// AccountRefs converts the configured accounts into directory entries.
// Accounts with an unknown provider are skipped here; validation reports
// them separately.
func (c *Config) AccountRefs() []costs.AccountRef {
	refs := make([]costs.AccountRef, 0, len(c.Accounts))
	for _, a := range c.Accounts {
		p, err := costs.ParseProvider(a.Provider)
		if err != nil {
			continue
		}
		active := true
		if a.Active != nil {
			active = *a.Active
		}
		refs = append(refs, costs.AccountRef{
			Provider:    p,
			AccountID:   a.AccountID,
			AccountName: a.Name,
			Active:      active,
		})
	}
	return refs
}
