package budget

import (
	"time"

	"costwise-hq/atlas/pkg/costs"
)

// Mode selects how a tenant's budget is scoped.
type Mode string

const (
	// ModeConsolidated applies one limit and threshold to the tenant's
	// combined spend across all accounts.
	ModeConsolidated Mode = "CONSOLIDATED"

	// ModeAccountSpecific applies per-account limits where configured,
	// with the consolidated limit as a display-only fallback for
	// accounts without one.
	ModeAccountSpecific Mode = "ACCOUNT_SPECIFIC"
)

// AccountBudget is an explicit limit for one (provider, account) pair.
type AccountBudget struct {
	Provider  costs.Provider `json:"provider" yaml:"provider"`
	AccountID string         `json:"accountId" yaml:"account_id"`

	// MonthlyBudgetLimit is the account's monthly limit. Must be > 0
	// when the budget is enabled.
	MonthlyBudgetLimit float64 `json:"monthlyBudgetLimit" yaml:"monthly_budget_limit"`

	// AlertThreshold optionally overrides the consolidated threshold
	// for this account, in percent [0, 100].
	AlertThreshold *float64 `json:"alertThreshold,omitempty" yaml:"alert_threshold,omitempty"`

	// Enabled toggles the budget without deleting its configuration.
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// Settings is a tenant's budget policy. One settings object exists per
// tenant, mutated only through Manager.UpdateSettings.
//
// AccountBudgets are retained when the mode switches to CONSOLIDATED:
// they are simply unused until the tenant toggles back, so nothing has
// to be re-entered.
type Settings struct {
	Mode Mode `json:"mode" yaml:"mode"`

	// MonthlyBudgetLimit is the consolidated monthly limit.
	MonthlyBudgetLimit float64 `json:"monthlyBudgetLimit" yaml:"monthly_budget_limit"`

	// AlertThreshold is the consolidated alert threshold in percent.
	AlertThreshold float64 `json:"alertThreshold" yaml:"alert_threshold"`

	// Currency is the currency of all limits in this settings object.
	Currency string `json:"currency" yaml:"currency"`

	AccountBudgets []AccountBudget `json:"accountBudgets" yaml:"account_budgets"`

	// UpdatedAt is stamped on every successful update. Concurrent
	// updates are last-write-wins.
	UpdatedAt time.Time `json:"updatedAt" yaml:"-"`
}

// DefaultSettings returns the policy a tenant starts with before its
// first explicit update.
func DefaultSettings(currency string) *Settings {
	if currency == "" {
		currency = "USD"
	}
	return &Settings{
		Mode:               ModeConsolidated,
		MonthlyBudgetLimit: 1000,
		AlertThreshold:     80,
		Currency:           currency,
	}
}

// accountBudgetFor returns the enabled explicit budget for an account,
// if one exists.
func (s *Settings) accountBudgetFor(provider costs.Provider, accountID string) *AccountBudget {
	for i := range s.AccountBudgets {
		ab := &s.AccountBudgets[i]
		if ab.Enabled && ab.Provider == provider && ab.AccountID == accountID {
			return ab
		}
	}
	return nil
}

// AccountCost is one account's current-month spend, already converted
// into the settings currency by the caller.
type AccountCost struct {
	Provider    costs.Provider `json:"provider"`
	AccountID   string         `json:"accountId"`
	AccountName string         `json:"accountName"`
	Amount      float64        `json:"currentMonthCost"`
}

// AccountUsage is one account's budget usage. UsagePercentage is
// computed against the account's own limit when HasBudget, otherwise
// against the consolidated limit as a display-only fallback; the
// fallback does not create an account budget.
type AccountUsage struct {
	Provider           costs.Provider `json:"provider"`
	AccountID          string         `json:"accountId"`
	AccountName        string         `json:"accountName"`
	CurrentMonthCost   float64        `json:"currentMonthCost"`
	MonthlyBudgetLimit *float64       `json:"monthlyBudgetLimit,omitempty"`
	AlertThreshold     *float64       `json:"alertThreshold,omitempty"`
	UsagePercentage    float64        `json:"usagePercentage"`
	ThresholdReached   bool           `json:"thresholdReached"`
	HasBudget          bool           `json:"hasBudget"`
}

// Usage is a tenant's derived budget state. It is recomputed on every
// query from live settings and live cost, never persisted, so it cannot
// go stale against the cost data.
type Usage struct {
	Mode               Mode           `json:"mode"`
	MonthlyBudgetLimit float64        `json:"monthlyBudgetLimit"`
	AlertThreshold     float64        `json:"alertThreshold"`
	CurrentMonthCost   float64        `json:"currentMonthCost"`
	UsagePercentage    float64        `json:"usagePercentage"`
	ThresholdReached   bool           `json:"thresholdReached"`
	Month              string         `json:"month"`
	Currency           string         `json:"currency"`
	AccountUsages      []AccountUsage `json:"accountUsages"`
}

// Alert is an ephemeral threshold-crossing event, emitted once per
// evaluation pass for each scope at or over its threshold. Alerts are
// not stored by this engine; callers poll or subscribe a sink.
type Alert struct {
	ID               string         `json:"id"`
	Mode             Mode           `json:"mode"`
	Provider         costs.Provider `json:"provider,omitempty"`
	AccountID        string         `json:"accountId,omitempty"`
	AccountName      string         `json:"accountName,omitempty"`
	BudgetLimit      float64        `json:"budgetLimit"`
	CurrentMonthCost float64        `json:"currentMonthCost"`
	UsagePercentage  float64        `json:"usagePercentage"`
	Threshold        float64        `json:"threshold"`
	Month            string         `json:"month"`
	Currency         string         `json:"currency"`
	TriggeredAt      time.Time      `json:"triggeredAt"`
	Message          string         `json:"message"`
}
