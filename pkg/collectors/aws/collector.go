package aws

import (
	"context"
	"time"

	"costwise-hq/atlas/pkg/collectors"
	"costwise-hq/atlas/pkg/costs"
)

// DailyServiceCost is the provider-native shape returned by the AWS
// billing client: one service's cost for one day, with the free-tier
// counters Cost Explorer reports in the same payload. No second call is
// needed to obtain free-tier data.
type DailyServiceCost struct {
	// Date is the usage day.
	Date time.Time

	// Service is the AWS service name (e.g. "Amazon Elastic Compute Cloud").
	Service string

	// Amount is the cost in USD.
	Amount float64

	// FreeTierLimit is the free-tier allowance for the service in
	// instance-hours. Zero when the service has no free tier.
	FreeTierLimit float64

	// FreeTierUsage is the cumulative free-tier usage at Date.
	FreeTierUsage float64

	// FreeTierActive indicates whether the free tier still applies.
	FreeTierActive bool
}

// BillingAPI is the raw AWS billing client, an external collaborator.
type BillingAPI interface {
	// DailyServiceCosts returns per-day, per-service costs for an
	// account over [from, to] inclusive.
	DailyServiceCosts(ctx context.Context, accountID string, from, to time.Time) ([]DailyServiceCost, error)
}

// Collector adapts the AWS billing client to the collector contract.
// AWS is the richest feed: daily granularity, service-grained, with
// free-tier metadata extracted per service per day.
type Collector struct {
	api BillingAPI
}

// NewCollector creates an AWS cost collector backed by the given client.
func NewCollector(api BillingAPI) *Collector {
	return &Collector{api: api}
}

// Provider returns costs.ProviderAWS.
func (c *Collector) Provider() costs.Provider {
	return costs.ProviderAWS
}

// Fetch returns one record per (day, service), in USD. Services with a
// positive free-tier limit carry FreeTierInfo on every daily record.
func (c *Collector) Fetch(ctx context.Context, account costs.AccountRef, from, to time.Time) ([]costs.CostRecord, error) {
	daily, err := c.api.DailyServiceCosts(ctx, account.AccountID, from, to)
	if err != nil {
		return nil, collectors.WrapFetchError(costs.ProviderAWS, account.AccountID, err)
	}

	records := make([]costs.CostRecord, 0, len(daily))
	for _, d := range daily {
		rec := costs.CostRecord{
			Provider:    costs.ProviderAWS,
			AccountID:   account.AccountID,
			AccountName: account.AccountName,
			Date:        d.Date,
			Service:     d.Service,
			Amount:      d.Amount,
			Currency:    costs.ProviderAWS.NativeCurrency(),
		}
		if d.FreeTierLimit > 0 {
			rec.FreeTier = &costs.FreeTierInfo{
				Limit:  d.FreeTierLimit,
				Used:   d.FreeTierUsage,
				Active: d.FreeTierActive,
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
