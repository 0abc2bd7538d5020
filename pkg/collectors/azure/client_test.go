package azure

import (
	"context"
	"testing"
	"time"

	"costwise-hq/atlas/internal/billingtest"
	"costwise-hq/atlas/pkg/collectors"
)

func TestClientSubscriptionCost(t *testing.T) {
	mock := billingtest.NewServer()
	defer mock.Close()

	mock.SetResponse("/v1/subscriptions/sub-1/costs", billingtest.Response{
		Body: map[string]any{
			"amount":   88.4,
			"currency": "EUR",
			"eligibleVMs": []map[string]any{
				{"name": "web-1", "hoursUsed": 410.0},
			},
		},
	})

	client, err := NewClient(collectors.ClientConfig{BaseURL: mock.URL(), APIKey: "k"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	got, err := client.SubscriptionCost(context.Background(), "sub-1",
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("SubscriptionCost failed: %v", err)
	}

	if got.Amount != 88.4 || got.Currency != "EUR" {
		t.Errorf("unexpected cost: %+v", got)
	}
	if len(got.EligibleVMs) != 1 || got.EligibleVMs[0].HoursUsed != 410 {
		t.Errorf("eligible VMs not mapped: %+v", got.EligibleVMs)
	}
}
