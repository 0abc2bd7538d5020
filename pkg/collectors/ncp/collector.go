package ncp

import (
	"context"
	"fmt"
	"time"

	"costwise-hq/atlas/pkg/collectors"
	"costwise-hq/atlas/pkg/costs"
)

// DemandCost is the provider-native shape returned by the NCP billing
// client: one demand type's cost for one billing month.
type DemandCost struct {
	// Month is the billing period in YYYYMM form.
	Month string

	// Service is the demand type name (e.g. "Server", "Cloud DB").
	Service string

	// Amount is the cost in KRW.
	Amount float64
}

// BillingAPI is the raw NCP billing client, an external collaborator.
// NCP's demand-cost endpoint is keyed by inclusive YYYYMM billing
// periods rather than arbitrary date ranges.
type BillingAPI interface {
	DemandCosts(ctx context.Context, memberID, startMonth, endMonth string) ([]DemandCost, error)
}

// Collector adapts the NCP billing client to the collector contract,
// converting the requested date window into inclusive start/end billing
// months before calling the client.
type Collector struct {
	api BillingAPI
}

// NewCollector creates an NCP cost collector backed by the given client.
func NewCollector(api BillingAPI) *Collector {
	return &Collector{api: api}
}

// Provider returns costs.ProviderNCP.
func (c *Collector) Provider() costs.Provider {
	return costs.ProviderNCP
}

// Fetch returns one record per (billing month, service) in KRW. The
// record date is the first day of the billing month.
func (c *Collector) Fetch(ctx context.Context, account costs.AccountRef, from, to time.Time) ([]costs.CostRecord, error) {
	demands, err := c.api.DemandCosts(ctx, account.AccountID, BillingMonth(from), BillingMonth(to))
	if err != nil {
		return nil, collectors.WrapFetchError(costs.ProviderNCP, account.AccountID, err)
	}

	records := make([]costs.CostRecord, 0, len(demands))
	for _, d := range demands {
		date, err := ParseBillingMonth(d.Month)
		if err != nil {
			return nil, collectors.WrapFetchError(costs.ProviderNCP, account.AccountID, err)
		}
		records = append(records, costs.CostRecord{
			Provider:    costs.ProviderNCP,
			AccountID:   account.AccountID,
			AccountName: account.AccountName,
			Date:        date,
			Service:     d.Service,
			Amount:      d.Amount,
			Currency:    costs.ProviderNCP.NativeCurrency(),
		})
	}
	return records, nil
}

// BillingMonth formats a date as an NCP YYYYMM billing period.
func BillingMonth(t time.Time) string {
	return t.Format("200601")
}

// ParseBillingMonth parses a YYYYMM billing period into the first day
// of that month (UTC).
func ParseBillingMonth(s string) (time.Time, error) {
	t, err := time.ParseInLocation("200601", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid billing month %q: %w", s, err)
	}
	return t, nil
}
