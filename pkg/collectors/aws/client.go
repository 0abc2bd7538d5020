package aws

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"costwise-hq/atlas/pkg/collectors"
	"costwise-hq/atlas/pkg/costs"
)

// dailyCostEntry is the wire shape of one (day, service) cost in the
// Cost Explorer export feed.
type dailyCostEntry struct {
	Date    string  `json:"date"`
	Service string  `json:"service"`
	Amount  float64 `json:"amount"`

	FreeTier *struct {
		Limit  float64 `json:"limit"`
		Usage  float64 `json:"usage"`
		Active bool    `json:"active"`
	} `json:"freeTier,omitempty"`
}

type dailyCostsResponse struct {
	Costs []dailyCostEntry `json:"costs"`
}

// Client is the AWS billing API client. It implements BillingAPI over
// the Cost Explorer export endpoint.
type Client struct {
	http *collectors.HTTPClient
}

// NewClient creates an AWS billing client.
func NewClient(config collectors.ClientConfig) (*Client, error) {
	config.Provider = costs.ProviderAWS
	hc, err := collectors.NewHTTPClient(config)
	if err != nil {
		return nil, err
	}
	return &Client{http: hc}, nil
}

// DailyServiceCosts returns per-day, per-service costs for an account
// over [from, to] inclusive.
func (c *Client) DailyServiceCosts(ctx context.Context, accountID string, from, to time.Time) ([]DailyServiceCost, error) {
	query := url.Values{}
	query.Set("from", from.Format("2006-01-02"))
	query.Set("to", to.Format("2006-01-02"))

	var resp dailyCostsResponse
	path := fmt.Sprintf("/v1/accounts/%s/costs/daily", url.PathEscape(accountID))
	if err := c.http.GetJSON(ctx, path, query, &resp); err != nil {
		return nil, err
	}

	out := make([]DailyServiceCost, 0, len(resp.Costs))
	for _, e := range resp.Costs {
		date, err := time.Parse("2006-01-02", e.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q in daily costs for account %s: %w", e.Date, accountID, err)
		}
		d := DailyServiceCost{
			Date:    date.UTC(),
			Service: e.Service,
			Amount:  e.Amount,
		}
		if e.FreeTier != nil {
			d.FreeTierLimit = e.FreeTier.Limit
			d.FreeTierUsage = e.FreeTier.Usage
			d.FreeTierActive = e.FreeTier.Active
		}
		out = append(out, d)
	}
	return out, nil
}
