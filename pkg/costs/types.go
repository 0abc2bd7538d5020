package costs

import (
	"fmt"
	"time"
)

// Provider identifies a supported cloud provider.
type Provider string

// Supported cloud providers.
const (
	ProviderAWS   Provider = "AWS"
	ProviderAzure Provider = "AZURE"
	ProviderGCP   Provider = "GCP"
	ProviderNCP   Provider = "NCP"
)

// Providers lists all supported providers in canonical order.
// Aggregation output is ordered by this sequence so results are
// deterministic regardless of fetch completion order.
var Providers = []Provider{ProviderAWS, ProviderAzure, ProviderGCP, ProviderNCP}

// ParseProvider converts a string into a Provider.
// Returns an error for unknown provider names.
func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case ProviderAWS, ProviderAzure, ProviderGCP, ProviderNCP:
		return Provider(s), nil
	}
	return "", &ConfigurationError{Field: "provider", Message: fmt.Sprintf("unknown provider %q", s)}
}

// NativeCurrency returns the provider's native billing currency.
// Azure subscriptions can bill in any currency; the value here is the
// fallback used when a record does not carry its own currency.
func (p Provider) NativeCurrency() string {
	switch p {
	case ProviderNCP:
		return "KRW"
	default:
		return "USD"
	}
}

// FreeTierInfo carries free-tier quota metadata attached to a cost record.
// Usage counters are cumulative-to-date within the billing period, not
// daily-additive, so consumers must take the maximum across a range
// rather than summing.
type FreeTierInfo struct {
	// Limit is the free-tier allowance (hours or currency amount).
	Limit float64 `json:"limit"`

	// Used is the cumulative usage observed at the record's date.
	Used float64 `json:"used"`

	// Active indicates whether the free tier is still active for
	// this service/account.
	Active bool `json:"isActive"`
}

// CostRecord is one provider/account/day/service cost observation.
// Records are produced fresh on every fetch and never persisted by
// this engine.
type CostRecord struct {
	// Provider is the cloud provider that produced this record.
	Provider Provider `json:"provider"`

	// AccountID is the provider-side account identifier
	// (AWS account, Azure subscription, GCP project, NCP member).
	AccountID string `json:"accountId"`

	// AccountName is the human-readable account name.
	AccountName string `json:"accountName"`

	// Date is the calendar day of the observation. For NCP this is the
	// first day of the billing month.
	Date time.Time `json:"date"`

	// Service is the provider-defined service name.
	Service string `json:"service"`

	// Amount is the cost in the provider's native billing currency.
	// Always >= 0.
	Amount float64 `json:"amount"`

	// Currency is the ISO code of Amount.
	Currency string `json:"currency"`

	// FreeTier carries optional free-tier quota metadata.
	FreeTier *FreeTierInfo `json:"freeTierInfo,omitempty"`
}

// AccountRef identifies a connected cloud account. Only active accounts
// are fetched. Account management is owned by an external collaborator;
// this engine only reads the directory.
type AccountRef struct {
	Provider    Provider `json:"provider"`
	AccountID   string   `json:"accountId"`
	AccountName string   `json:"accountName"`
	Active      bool     `json:"active"`
}

// Key returns a stable "provider/accountId" identifier for logs and maps.
func (a AccountRef) Key() string {
	return string(a.Provider) + "/" + a.AccountID
}
