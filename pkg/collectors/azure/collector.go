package azure

import (
	"context"
	"time"

	"costwise-hq/atlas/pkg/collectors"
	"costwise-hq/atlas/pkg/costs"
)

// SubscriptionCost is the provider-native shape returned by the Azure
// cost management client: one pre-aggregated amount per subscription
// for the whole requested range. Azure does not expose daily
// granularity through this feed, so one record represents one
// account-period.
type SubscriptionCost struct {
	// Amount is the total cost over the range.
	Amount float64

	// Currency is the subscription's billing currency. Azure
	// subscriptions bill in the currency of their billing profile,
	// which varies per subscription.
	Currency string

	// EligibleVMs lists B1s-equivalent virtual machines covered by the
	// free tier, with their cumulative usage hours over the range.
	EligibleVMs []VMUsage
}

// VMUsage is one free-tier-eligible virtual machine's usage.
type VMUsage struct {
	// Name is the VM name.
	Name string

	// HoursUsed is the cumulative instance-hours used in the range.
	HoursUsed float64
}

// CostManagementAPI is the raw Azure cost client, an external
// collaborator.
type CostManagementAPI interface {
	SubscriptionCost(ctx context.Context, subscriptionID string, from, to time.Time) (*SubscriptionCost, error)
}

// Collector adapts the Azure cost management client to the collector
// contract.
type Collector struct {
	api CostManagementAPI
}

// NewCollector creates an Azure cost collector backed by the given client.
func NewCollector(api CostManagementAPI) *Collector {
	return &Collector{api: api}
}

// Provider returns costs.ProviderAzure.
func (c *Collector) Provider() costs.Provider {
	return costs.ProviderAzure
}

// Fetch returns one aggregate record for the account-period plus one
// zero-amount record per free-tier-eligible VM carrying its hour usage.
// Downstream aggregation must not assume daily records exist for Azure.
func (c *Collector) Fetch(ctx context.Context, account costs.AccountRef, from, to time.Time) ([]costs.CostRecord, error) {
	sub, err := c.api.SubscriptionCost(ctx, account.AccountID, from, to)
	if err != nil {
		return nil, collectors.WrapFetchError(costs.ProviderAzure, account.AccountID, err)
	}

	currency := sub.Currency
	if currency == "" {
		currency = costs.ProviderAzure.NativeCurrency()
	}

	records := []costs.CostRecord{{
		Provider:    costs.ProviderAzure,
		AccountID:   account.AccountID,
		AccountName: account.AccountName,
		Date:        from,
		Service:     "Total",
		Amount:      sub.Amount,
		Currency:    currency,
	}}

	// Free-tier hours ride on zero-amount records so the quota tracker
	// can derive VM-hour usage without a second feed.
	for _, vm := range sub.EligibleVMs {
		records = append(records, costs.CostRecord{
			Provider:    costs.ProviderAzure,
			AccountID:   account.AccountID,
			AccountName: account.AccountName,
			Date:        from,
			Service:     "Virtual Machines",
			Amount:      0,
			Currency:    currency,
			FreeTier: &costs.FreeTierInfo{
				Limit:  0, // limit is the shared B1s baseline, owned by the tracker
				Used:   vm.HoursUsed,
				Active: true,
			},
		})
	}

	return records, nil
}
