package budget

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Store persists tenant budget settings. Persistence itself is owned by
// the backend (see pkg/budget/storage); the manager only computes over
// what the store returns. Implementations must be safe for concurrent
// use.
type Store interface {
	// Save persists the settings for a tenant, replacing any previous
	// version (last-write-wins).
	Save(ctx context.Context, tenantID string, s *Settings) error

	// Load returns the settings for a tenant, or (nil, nil) when the
	// tenant has none stored yet.
	Load(ctx context.Context, tenantID string) (*Settings, error)

	// Delete removes a tenant's settings. No-op when absent.
	Delete(ctx context.Context, tenantID string) error

	// Tenants returns every tenant id with stored settings.
	Tenants(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close() error
}

// Sink receives emitted alerts. Implementations must not block for
// long; slow delivery belongs behind the sink, not in the evaluation
// path.
type Sink interface {
	Deliver(ctx context.Context, tenantID string, alerts []Alert) error
}

// LogSink writes alerts to the structured log. It is the default sink
// when no external notification channel is configured.
type LogSink struct {
	Logger *slog.Logger
}

// Deliver implements Sink.
func (s *LogSink) Deliver(_ context.Context, tenantID string, alerts []Alert) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	for _, a := range alerts {
		logger.Warn("budget alert",
			"tenant", tenantID,
			"alert_id", a.ID,
			"mode", a.Mode,
			"provider", a.Provider,
			"account_id", a.AccountID,
			"usage_percentage", a.UsagePercentage,
			"threshold", a.Threshold,
			"month", a.Month,
			"message", a.Message,
		)
	}
	return nil
}

// Manager owns the budget settings lifecycle and threshold evaluation
// for all tenants.
type Manager struct {
	store  Store
	logger *slog.Logger

	// mu serializes read-modify-write on settings updates. Concurrent
	// updates are last-write-wins; no merge semantics.
	mu sync.Mutex
}

// NewManager creates a budget manager over the given store.
func NewManager(store Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:  store,
		logger: logger.With("component", "budget.manager"),
	}
}

// GetSettings returns a tenant's settings, or the defaults when the
// tenant has never configured a budget.
func (m *Manager) GetSettings(ctx context.Context, tenantID string) (*Settings, error) {
	s, err := m.store.Load(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load budget settings for tenant %q: %w", tenantID, err)
	}
	if s == nil {
		return DefaultSettings(""), nil
	}
	return s, nil
}

// UpdateSettings validates and persists a settings update. A rejected
// update leaves the stored settings unchanged.
//
// When the payload omits AccountBudgets (nil, as opposed to an empty
// list), the previously stored account budgets are retained, so a mode
// toggle never wipes per-account configuration.
func (m *Manager) UpdateSettings(ctx context.Context, tenantID string, payload *Settings) (*Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, err := m.GetSettings(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	next := *payload
	if next.Currency == "" {
		next.Currency = current.Currency
	}
	if next.AccountBudgets == nil {
		next.AccountBudgets = current.AccountBudgets
	}

	if err := ValidateSettings(&next); err != nil {
		return nil, err
	}

	next.UpdatedAt = time.Now().UTC()
	if err := m.store.Save(ctx, tenantID, &next); err != nil {
		return nil, fmt.Errorf("failed to save budget settings for tenant %q: %w", tenantID, err)
	}

	m.logger.Info("budget settings updated",
		"tenant", tenantID,
		"mode", next.Mode,
		"monthly_limit", next.MonthlyBudgetLimit,
		"alert_threshold", next.AlertThreshold,
		"account_budgets", len(next.AccountBudgets),
	)
	return &next, nil
}

// Usage computes a tenant's budget usage from current-month account
// costs already converted into the settings currency.
func (m *Manager) Usage(ctx context.Context, tenantID string, accounts []AccountCost, month string) (*Usage, error) {
	settings, err := m.GetSettings(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return ComputeUsage(settings, accounts, month), nil
}

// CheckAlerts evaluates a tenant's thresholds and returns the alerts
// for every scope at or over its threshold. Alerts are computed fresh
// on every invocation; this is not a standing subscription.
func (m *Manager) CheckAlerts(ctx context.Context, tenantID string, accounts []AccountCost, month string, now time.Time) ([]Alert, error) {
	usage, err := m.Usage(ctx, tenantID, accounts, month)
	if err != nil {
		return nil, err
	}
	return EvaluateAlerts(usage, now), nil
}

// Tenants returns every tenant with stored settings, for scheduled
// evaluation sweeps.
func (m *Manager) Tenants(ctx context.Context) ([]string, error) {
	return m.store.Tenants(ctx)
}
