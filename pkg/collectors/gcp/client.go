package gcp

import (
	"context"
	"fmt"
	"net/url"

	"costwise-hq/atlas/pkg/collectors"
	"costwise-hq/atlas/pkg/costs"
)

type creditUsageResponse struct {
	UsedAmount  float64 `json:"usedAmount"`
	LimitAmount float64 `json:"limitAmount"`
	Currency    string  `json:"currency"`
	Active      bool    `json:"active"`
}

// Client is the GCP quota API client. It implements QuotaAPI over the
// free-tier credit endpoint.
type Client struct {
	http *collectors.HTTPClient
}

// NewClient creates a GCP quota client.
func NewClient(config collectors.ClientConfig) (*Client, error) {
	config.Provider = costs.ProviderGCP
	hc, err := collectors.NewHTTPClient(config)
	if err != nil {
		return nil, err
	}
	return &Client{http: hc}, nil
}

// CreditUsage returns the project's free-tier credit consumption.
func (c *Client) CreditUsage(ctx context.Context, projectID string) (*CreditUsage, error) {
	var resp creditUsageResponse
	path := fmt.Sprintf("/v1/projects/%s/free-tier-credit", url.PathEscape(projectID))
	if err := c.http.GetJSON(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return &CreditUsage{
		UsedAmount:  resp.UsedAmount,
		LimitAmount: resp.LimitAmount,
		Currency:    resp.Currency,
		Active:      resp.Active,
	}, nil
}
