package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/robfig/cron/v3"

	"costwise-hq/atlas/pkg/costs"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateAccounts(cfg.Accounts)...)
	errs = append(errs, validateCollectors(cfg.Collectors)...)
	errs = append(errs, validateCurrency(&cfg.Currency)...)
	errs = append(errs, validateOrchestrator(&cfg.Orchestrator)...)
	errs = append(errs, validateBudget(&cfg.Budget)...)
	errs = append(errs, validateScheduler(&cfg.Scheduler)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(s *ServerConfig) []FieldError {
	var errs []FieldError

	if s.ListenAddress == "" {
		errs = append(errs, FieldError{Field: "server.listen_address", Message: "must not be empty"})
	} else if _, _, err := net.SplitHostPort(s.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("must be host:port, got %q", s.ListenAddress),
		})
	}
	if s.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.shutdown_timeout", Message: "must not be negative"})
	}
	return errs
}

func validateAccounts(accounts []AccountConfig) []FieldError {
	var errs []FieldError
	seen := make(map[string]bool)

	for i, a := range accounts {
		prefix := fmt.Sprintf("accounts[%d]", i)

		if _, err := costs.ParseProvider(a.Provider); err != nil {
			errs = append(errs, FieldError{
				Field:   prefix + ".provider",
				Message: fmt.Sprintf("unknown provider %q", a.Provider),
			})
		}
		if a.AccountID == "" {
			errs = append(errs, FieldError{Field: prefix + ".account_id", Message: "must not be empty"})
		}

		key := a.Provider + "/" + a.AccountID
		if a.AccountID != "" && seen[key] {
			errs = append(errs, FieldError{
				Field:   prefix,
				Message: fmt.Sprintf("duplicate account %s", key),
			})
		}
		seen[key] = true
	}
	return errs
}

func validateCollectors(collectors map[string]CollectorConfig) []FieldError {
	var errs []FieldError
	for name, c := range collectors {
		prefix := "collectors." + name
		if _, err := costs.ParseProvider(name); err != nil {
			errs = append(errs, FieldError{
				Field:   prefix,
				Message: fmt.Sprintf("unknown provider %q", name),
			})
		}
		if c.Timeout < 0 {
			errs = append(errs, FieldError{Field: prefix + ".timeout", Message: "must not be negative"})
		}
	}
	return errs
}

func validateCurrency(c *CurrencyConfig) []FieldError {
	var errs []FieldError
	if c.Display == "" {
		errs = append(errs, FieldError{Field: "currency.display", Message: "must not be empty"})
	}
	if c.WatchRates != nil && *c.WatchRates && c.RatesFile == "" {
		errs = append(errs, FieldError{
			Field:   "currency.watch_rates",
			Message: "requires currency.rates_file to be set",
		})
	}
	return errs
}

func validateOrchestrator(o *OrchestratorConfig) []FieldError {
	var errs []FieldError
	if o.MaxConcurrentFetches < 1 {
		errs = append(errs, FieldError{
			Field:   "orchestrator.max_concurrent_fetches",
			Message: fmt.Sprintf("must be at least 1, got %d", o.MaxConcurrentFetches),
		})
	}
	if o.FetchTimeout <= 0 {
		errs = append(errs, FieldError{Field: "orchestrator.fetch_timeout", Message: "must be positive"})
	}
	if o.RequestTimeout <= 0 {
		errs = append(errs, FieldError{Field: "orchestrator.request_timeout", Message: "must be positive"})
	}
	if o.FetchTimeout > 0 && o.RequestTimeout > 0 && o.FetchTimeout > o.RequestTimeout {
		errs = append(errs, FieldError{
			Field:   "orchestrator.fetch_timeout",
			Message: "must not exceed orchestrator.request_timeout",
		})
	}
	return errs
}

func validateBudget(b *BudgetConfig) []FieldError {
	var errs []FieldError
	switch b.Backend {
	case "sqlite":
		if b.DBPath == "" {
			errs = append(errs, FieldError{Field: "budget.db_path", Message: "must not be empty for the sqlite backend"})
		}
	case "memory":
	default:
		errs = append(errs, FieldError{
			Field:   "budget.backend",
			Message: fmt.Sprintf("must be \"sqlite\" or \"memory\", got %q", b.Backend),
		})
	}
	return errs
}

func validateScheduler(s *SchedulerConfig) []FieldError {
	var errs []FieldError
	if s.Enabled != nil && *s.Enabled && s.CronSpec != "" {
		if _, err := cron.ParseStandard(s.CronSpec); err != nil {
			errs = append(errs, FieldError{
				Field:   "scheduler.cron_spec",
				Message: fmt.Sprintf("invalid cron expression %q: %v", s.CronSpec, err),
			})
		}
	}
	return errs
}

func validateTelemetry(t *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch t.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("must be debug, info, warn, or error, got %q", t.Logging.Level),
		})
	}

	switch t.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("must be json or text, got %q", t.Logging.Format),
		})
	}

	if t.Metrics.Path != "" && !strings.HasPrefix(t.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: fmt.Sprintf("must start with /, got %q", t.Metrics.Path),
		})
	}
	return errs
}
