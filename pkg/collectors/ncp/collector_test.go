package ncp

import (
	"context"
	"errors"
	"testing"
	"time"

	"costwise-hq/atlas/pkg/costs"
)

type fakeBilling struct {
	demands    []DemandCost
	err        error
	gotStart   string
	gotEnd     string
	gotMemberID string
}

func (f *fakeBilling) DemandCosts(_ context.Context, memberID, startMonth, endMonth string) ([]DemandCost, error) {
	f.gotMemberID = memberID
	f.gotStart = startMonth
	f.gotEnd = endMonth
	return f.demands, f.err
}

func TestFetch_ConvertsRangeToBillingMonths(t *testing.T) {
	api := &fakeBilling{demands: []DemandCost{
		{Month: "202607", Service: "Server", Amount: 150000},
		{Month: "202608", Service: "Server", Amount: 180000},
		{Month: "202608", Service: "Cloud DB", Amount: 42000},
	}}
	c := NewCollector(api)

	account := costs.AccountRef{Provider: costs.ProviderNCP, AccountID: "ncp-77", AccountName: "korea-prod", Active: true}
	from := time.Date(2026, 7, 12, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

	records, err := c.Fetch(context.Background(), account, from, to)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	// Arbitrary windows collapse to inclusive start/end months.
	if api.gotStart != "202607" || api.gotEnd != "202608" {
		t.Errorf("billing window = [%s, %s], want [202607, 202608]", api.gotStart, api.gotEnd)
	}
	if api.gotMemberID != "ncp-77" {
		t.Errorf("member id = %s, want ncp-77", api.gotMemberID)
	}

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for _, rec := range records {
		if rec.Currency != "KRW" {
			t.Errorf("currency = %s, want KRW", rec.Currency)
		}
		if rec.Date.Day() != 1 {
			t.Errorf("record date should be first of billing month, got %v", rec.Date)
		}
	}
	if got := records[0].Date; got != time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC) {
		t.Errorf("record date = %v, want 2026-07-01", got)
	}
}

func TestFetch_RejectsMalformedBillingMonth(t *testing.T) {
	c := NewCollector(&fakeBilling{demands: []DemandCost{{Month: "2026-08", Service: "Server", Amount: 1}}})
	account := costs.AccountRef{Provider: costs.ProviderNCP, AccountID: "ncp-77"}

	_, err := c.Fetch(context.Background(), account, time.Now().AddDate(0, -1, 0), time.Now())
	var collErr *costs.CollectorError
	if !errors.As(err, &collErr) {
		t.Fatalf("expected CollectorError, got %T", err)
	}
}

func TestBillingMonthHelpers(t *testing.T) {
	d := time.Date(2026, 1, 31, 23, 0, 0, 0, time.UTC)
	if got := BillingMonth(d); got != "202601" {
		t.Errorf("BillingMonth = %s, want 202601", got)
	}

	parsed, err := ParseBillingMonth("202612")
	if err != nil {
		t.Fatalf("ParseBillingMonth failed: %v", err)
	}
	if parsed != time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC) {
		t.Errorf("ParseBillingMonth = %v", parsed)
	}

	if _, err := ParseBillingMonth("garbage"); err == nil {
		t.Error("expected error for malformed month")
	}
}
