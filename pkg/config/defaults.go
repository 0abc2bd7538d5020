package config

import "time"

// Default values applied to any configuration field left unset.
const (
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 150 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1 << 20

	DefaultDisplayCurrency = "USD"

	DefaultAzureMonthlyHours = 750
	DefaultGCPCreditAmount   = 300
	DefaultGCPCreditCurrency = "USD"

	DefaultMaxConcurrentFetches = 12
	DefaultFetchTimeout         = 30 * time.Second
	DefaultRequestTimeout       = 2 * time.Minute

	DefaultBudgetBackend = "sqlite"
	DefaultBudgetDBPath  = "atlas-budgets.db"

	DefaultCronSpec = "0 * * * *"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "atlas"
	DefaultMetricsSubsystem = "costs"
)

// DefaultFetchDurationBuckets returns the default histogram buckets for
// collector call duration in seconds.
func DefaultFetchDurationBuckets() []float64 {
	return []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0}
}

// ApplyDefaults fills in default values for any configuration fields
// that are not set. It modifies the configuration in place.
func ApplyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyCurrencyDefaults(&cfg.Currency)
	applyFreeTierDefaults(&cfg.FreeTier)
	applyOrchestratorDefaults(&cfg.Orchestrator)
	applyBudgetDefaults(&cfg.Budget)
	applySchedulerDefaults(&cfg.Scheduler)
	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyServerDefaults(s *ServerConfig) {
	if s.ListenAddress == "" {
		s.ListenAddress = DefaultListenAddress
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = DefaultReadTimeout
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = DefaultWriteTimeout
	}
	if s.IdleTimeout == 0 {
		s.IdleTimeout = DefaultIdleTimeout
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = DefaultShutdownTimeout
	}
	if s.MaxHeaderBytes == 0 {
		s.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
}

func applyCurrencyDefaults(c *CurrencyConfig) {
	if c.Display == "" {
		c.Display = DefaultDisplayCurrency
	}
	if c.WatchRates == nil {
		watch := c.RatesFile != ""
		c.WatchRates = &watch
	}
}

func applyFreeTierDefaults(f *FreeTierConfig) {
	if f.AzureMonthlyHours == 0 {
		f.AzureMonthlyHours = DefaultAzureMonthlyHours
	}
	if f.GCPCreditAmount == 0 {
		f.GCPCreditAmount = DefaultGCPCreditAmount
	}
	if f.GCPCreditCurrency == "" {
		f.GCPCreditCurrency = DefaultGCPCreditCurrency
	}
}

func applyOrchestratorDefaults(o *OrchestratorConfig) {
	if o.MaxConcurrentFetches == 0 {
		o.MaxConcurrentFetches = DefaultMaxConcurrentFetches
	}
	if o.FetchTimeout == 0 {
		o.FetchTimeout = DefaultFetchTimeout
	}
	if o.RequestTimeout == 0 {
		o.RequestTimeout = DefaultRequestTimeout
	}
}

func applyBudgetDefaults(b *BudgetConfig) {
	if b.Backend == "" {
		b.Backend = DefaultBudgetBackend
	}
	if b.DBPath == "" {
		b.DBPath = DefaultBudgetDBPath
	}
}

func applySchedulerDefaults(s *SchedulerConfig) {
	if s.Enabled == nil {
		enabled := true
		s.Enabled = &enabled
	}
	if s.CronSpec == "" {
		s.CronSpec = DefaultCronSpec
	}
}

func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.Logging.Level == "" {
		t.Logging.Level = DefaultLogLevel
	}
	if t.Logging.Format == "" {
		t.Logging.Format = DefaultLogFormat
	}
	if t.Metrics.Enabled == nil {
		enabled := true
		t.Metrics.Enabled = &enabled
	}
	if t.Metrics.Path == "" {
		t.Metrics.Path = DefaultMetricsPath
	}
	if t.Metrics.Namespace == "" {
		t.Metrics.Namespace = DefaultMetricsNamespace
	}
	if t.Metrics.Subsystem == "" {
		t.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(t.Metrics.FetchDurationBuckets) == 0 {
		t.Metrics.FetchDurationBuckets = DefaultFetchDurationBuckets()
	}
}
