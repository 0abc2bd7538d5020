package gcp

import (
	"context"
	"testing"

	"costwise-hq/atlas/internal/billingtest"
	"costwise-hq/atlas/pkg/collectors"
)

func TestClientCreditUsage(t *testing.T) {
	mock := billingtest.NewServer()
	defer mock.Close()

	mock.SetResponse("/v1/projects/proj-1/free-tier-credit", billingtest.Response{
		Body: map[string]any{
			"usedAmount":  120.0,
			"limitAmount": 300.0,
			"currency":    "USD",
			"active":      true,
		},
	})

	client, err := NewClient(collectors.ClientConfig{BaseURL: mock.URL(), APIKey: "k"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	got, err := client.CreditUsage(context.Background(), "proj-1")
	if err != nil {
		t.Fatalf("CreditUsage failed: %v", err)
	}
	if got.UsedAmount != 120 || got.LimitAmount != 300 || !got.Active || got.Currency != "USD" {
		t.Errorf("unexpected credit usage: %+v", got)
	}
}
