package azure

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"costwise-hq/atlas/pkg/collectors"
	"costwise-hq/atlas/pkg/costs"
)

type subscriptionCostResponse struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`

	EligibleVMs []struct {
		Name      string  `json:"name"`
		HoursUsed float64 `json:"hoursUsed"`
	} `json:"eligibleVMs"`
}

// Client is the Azure cost management API client. It implements
// CostManagementAPI over the subscription cost endpoint.
type Client struct {
	http *collectors.HTTPClient
}

// NewClient creates an Azure cost management client.
func NewClient(config collectors.ClientConfig) (*Client, error) {
	config.Provider = costs.ProviderAzure
	hc, err := collectors.NewHTTPClient(config)
	if err != nil {
		return nil, err
	}
	return &Client{http: hc}, nil
}

// SubscriptionCost returns the subscription's pre-aggregated cost over
// [from, to] inclusive, with free-tier-eligible VM usage.
func (c *Client) SubscriptionCost(ctx context.Context, subscriptionID string, from, to time.Time) (*SubscriptionCost, error) {
	query := url.Values{}
	query.Set("from", from.Format("2006-01-02"))
	query.Set("to", to.Format("2006-01-02"))

	var resp subscriptionCostResponse
	path := fmt.Sprintf("/v1/subscriptions/%s/costs", url.PathEscape(subscriptionID))
	if err := c.http.GetJSON(ctx, path, query, &resp); err != nil {
		return nil, err
	}

	out := &SubscriptionCost{
		Amount:   resp.Amount,
		Currency: resp.Currency,
	}
	for _, vm := range resp.EligibleVMs {
		out.EligibleVMs = append(out.EligibleVMs, VMUsage{Name: vm.Name, HoursUsed: vm.HoursUsed})
	}
	return out, nil
}
