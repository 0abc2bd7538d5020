package gcp

import (
	"context"
	"time"

	"costwise-hq/atlas/pkg/collectors"
	"costwise-hq/atlas/pkg/costs"
)

// CreditUsage is the provider-native shape returned by the GCP quota
// client: free-tier credit consumption for one project.
type CreditUsage struct {
	// UsedAmount is the credit consumed so far.
	UsedAmount float64

	// LimitAmount is the granted credit amount.
	LimitAmount float64

	// Currency is the credit currency.
	Currency string

	// Active indicates whether the credit is still active.
	Active bool
}

// QuotaAPI is the raw GCP quota client, an external collaborator.
type QuotaAPI interface {
	CreditUsage(ctx context.Context, projectID string) (*CreditUsage, error)
}

// Collector adapts GCP to the collector contract. There is currently no
// real billable-cost source for GCP: the product connects projects
// before billing export is wired up, so this collector reports zero
// cost while still supplying free-tier credit usage from the quota
// feed. "Provider present, cost always 0" is expected here, not an
// error.
type Collector struct {
	api QuotaAPI
}

// NewCollector creates a GCP collector backed by the given quota client.
func NewCollector(api QuotaAPI) *Collector {
	return &Collector{api: api}
}

// Provider returns costs.ProviderGCP.
func (c *Collector) Provider() costs.Provider {
	return costs.ProviderGCP
}

// Fetch returns a single zero-amount record carrying credit usage for
// the project. from/to are accepted for contract uniformity; credit
// counters are cumulative and not range-scoped.
func (c *Collector) Fetch(ctx context.Context, account costs.AccountRef, from, _ time.Time) ([]costs.CostRecord, error) {
	credit, err := c.api.CreditUsage(ctx, account.AccountID)
	if err != nil {
		return nil, collectors.WrapFetchError(costs.ProviderGCP, account.AccountID, err)
	}

	currency := credit.Currency
	if currency == "" {
		currency = costs.ProviderGCP.NativeCurrency()
	}

	return []costs.CostRecord{{
		Provider:    costs.ProviderGCP,
		AccountID:   account.AccountID,
		AccountName: account.AccountName,
		Date:        from,
		Service:     "Free Tier Credit",
		Amount:      0,
		Currency:    currency,
		FreeTier: &costs.FreeTierInfo{
			Limit:  credit.LimitAmount,
			Used:   credit.UsedAmount,
			Active: credit.Active,
		},
	}}, nil
}
