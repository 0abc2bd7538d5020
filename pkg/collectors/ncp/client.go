package ncp

import (
	"context"
	"fmt"
	"net/url"

	"costwise-hq/atlas/pkg/collectors"
	"costwise-hq/atlas/pkg/costs"
)

type demandCostsResponse struct {
	DemandCosts []struct {
		Month      string  `json:"month"`
		DemandType string  `json:"demandType"`
		Amount     float64 `json:"amount"`
	} `json:"demandCosts"`
}

// Client is the NCP billing API client. It implements BillingAPI over
// the demand cost endpoint.
type Client struct {
	http *collectors.HTTPClient
}

// NewClient creates an NCP billing client.
func NewClient(config collectors.ClientConfig) (*Client, error) {
	config.Provider = costs.ProviderNCP
	hc, err := collectors.NewHTTPClient(config)
	if err != nil {
		return nil, err
	}
	return &Client{http: hc}, nil
}

// DemandCosts returns per-month, per-demand-type costs for a member
// over the inclusive [startMonth, endMonth] billing period range.
func (c *Client) DemandCosts(ctx context.Context, memberID, startMonth, endMonth string) ([]DemandCost, error) {
	query := url.Values{}
	query.Set("startMonth", startMonth)
	query.Set("endMonth", endMonth)

	var resp demandCostsResponse
	path := fmt.Sprintf("/v1/members/%s/demand-costs", url.PathEscape(memberID))
	if err := c.http.GetJSON(ctx, path, query, &resp); err != nil {
		return nil, err
	}

	out := make([]DemandCost, 0, len(resp.DemandCosts))
	for _, d := range resp.DemandCosts {
		out = append(out, DemandCost{
			Month:   d.Month,
			Service: d.DemandType,
			Amount:  d.Amount,
		})
	}
	return out, nil
}
