package freetier

import (
	"math"
	"testing"
	"time"

	"costwise-hq/atlas/pkg/costs"
)

func awsRecord(account, service string, day int, amount, ftLimit, ftUsed float64) costs.CostRecord {
	rec := costs.CostRecord{
		Provider:  costs.ProviderAWS,
		AccountID: account,
		Date:      time.Date(2026, 8, day, 0, 0, 0, 0, time.UTC),
		Service:   service,
		Amount:    amount,
		Currency:  "USD",
	}
	if ftLimit > 0 {
		rec.FreeTier = &costs.FreeTierInfo{Limit: ftLimit, Used: ftUsed, Active: true}
	}
	return rec
}

// ============================================================================
// AWS
// ============================================================================

func TestSummarizeAWS_MaxNotSum(t *testing.T) {
	// Usage counters are cumulative-to-date: [10, 20, 15] over three
	// days means 20 hours used, not 45.
	records := []costs.CostRecord{
		awsRecord("acct-1", "EC2", 1, 1.0, 750, 10),
		awsRecord("acct-1", "EC2", 2, 1.0, 750, 20),
		awsRecord("acct-1", "EC2", 3, 1.0, 750, 15),
	}

	summary := NewTracker(DefaultBaselines()).Summarize(records)
	if summary.AWS == nil {
		t.Fatal("expected AWS summary")
	}
	if summary.AWS.TotalUsage != 20 {
		t.Errorf("TotalUsage = %v, want 20 (max, not sum)", summary.AWS.TotalUsage)
	}
	if summary.AWS.TotalLimit != 750 {
		t.Errorf("TotalLimit = %v, want 750", summary.AWS.TotalLimit)
	}
	if summary.AWS.Remaining != 730 {
		t.Errorf("Remaining = %v, want 730", summary.AWS.Remaining)
	}
}

func TestSummarizeAWS_SumsAcrossServicesAndAccounts(t *testing.T) {
	records := []costs.CostRecord{
		awsRecord("acct-1", "EC2", 1, 1.0, 750, 100),
		awsRecord("acct-1", "Lambda", 1, 0.2, 400, 50),
		awsRecord("acct-2", "EC2", 1, 3.0, 750, 750),
	}

	summary := NewTracker(DefaultBaselines()).Summarize(records)
	if summary.AWS == nil {
		t.Fatal("expected AWS summary")
	}
	if summary.AWS.TotalUsage != 900 {
		t.Errorf("TotalUsage = %v, want 900", summary.AWS.TotalUsage)
	}
	if summary.AWS.TotalLimit != 1900 {
		t.Errorf("TotalLimit = %v, want 1900", summary.AWS.TotalLimit)
	}

	// Mean of per-account percentages, not usage-weighted:
	// acct-1: 150/1150 = 13.043...%, acct-2: 100%.
	wantPct := (150.0/1150.0*100 + 100) / 2
	if math.Abs(summary.AWS.Percentage-wantPct) > 1e-9 {
		t.Errorf("Percentage = %v, want %v", summary.AWS.Percentage, wantPct)
	}
}

func TestSummarizeAWS_EdgeAccounts(t *testing.T) {
	// acct-1 has cost but no free-tier service: counts as 100%.
	// acct-2 has zero cost and no free-tier data: counts as 0%.
	// acct-3 anchors the limit so the summary is not omitted.
	records := []costs.CostRecord{
		awsRecord("acct-1", "S3", 1, 9.99, 0, 0),
		awsRecord("acct-2", "S3", 1, 0, 0, 0),
		awsRecord("acct-3", "EC2", 1, 0, 750, 375),
	}

	summary := NewTracker(DefaultBaselines()).Summarize(records)
	if summary.AWS == nil {
		t.Fatal("expected AWS summary")
	}
	wantPct := (100.0 + 0 + 50) / 3
	if math.Abs(summary.AWS.Percentage-wantPct) > 1e-9 {
		t.Errorf("Percentage = %v, want %v", summary.AWS.Percentage, wantPct)
	}
}

func TestSummarizeAWS_OmittedWithoutEligibleResource(t *testing.T) {
	records := []costs.CostRecord{
		awsRecord("acct-1", "S3", 1, 5.0, 0, 0),
	}

	summary := NewTracker(DefaultBaselines()).Summarize(records)
	if summary.AWS != nil {
		t.Errorf("expected nil AWS summary when no free-tier limit exists, got %+v", summary.AWS)
	}
}

func TestSummarizeAWS_PercentageClamped(t *testing.T) {
	records := []costs.CostRecord{
		awsRecord("acct-1", "EC2", 1, 1.0, 750, 900),
	}

	summary := NewTracker(DefaultBaselines()).Summarize(records)
	if summary.AWS == nil {
		t.Fatal("expected AWS summary")
	}
	if summary.AWS.Percentage != 100 {
		t.Errorf("Percentage = %v, want clamped 100", summary.AWS.Percentage)
	}
	if summary.AWS.Remaining != 0 {
		t.Errorf("Remaining = %v, want 0", summary.AWS.Remaining)
	}
}

// ============================================================================
// Azure
// ============================================================================

func TestSummarizeAzure(t *testing.T) {
	records := []costs.CostRecord{
		{Provider: costs.ProviderAzure, AccountID: "sub-1", Service: "Total", Amount: 100, Currency: "EUR"},
		{Provider: costs.ProviderAzure, AccountID: "sub-1", Service: "Virtual Machines", Currency: "EUR",
			FreeTier: &costs.FreeTierInfo{Used: 300, Active: true}},
		{Provider: costs.ProviderAzure, AccountID: "sub-2", Service: "Virtual Machines", Currency: "EUR",
			FreeTier: &costs.FreeTierInfo{Used: 150, Active: true}},
	}

	summary := NewTracker(DefaultBaselines()).Summarize(records)
	if summary.Azure == nil {
		t.Fatal("expected Azure summary")
	}
	if summary.Azure.TotalUsage != 450 {
		t.Errorf("TotalUsage = %v, want 450", summary.Azure.TotalUsage)
	}
	if summary.Azure.TotalLimit != 750 {
		t.Errorf("TotalLimit = %v, want fixed 750 baseline", summary.Azure.TotalLimit)
	}
	if summary.Azure.EligibleVMCount != 2 {
		t.Errorf("EligibleVMCount = %d, want 2", summary.Azure.EligibleVMCount)
	}
	if math.Abs(summary.Azure.Percentage-60) > 1e-9 {
		t.Errorf("Percentage = %v, want 60", summary.Azure.Percentage)
	}
}

func TestSummarizeAzure_OmittedWithoutEligibleVMs(t *testing.T) {
	records := []costs.CostRecord{
		{Provider: costs.ProviderAzure, AccountID: "sub-1", Service: "Total", Amount: 42, Currency: "USD"},
	}

	summary := NewTracker(DefaultBaselines()).Summarize(records)
	if summary.Azure != nil {
		t.Errorf("expected nil Azure summary, got %+v", summary.Azure)
	}
}

// ============================================================================
// GCP
// ============================================================================

func TestSummarizeGCP(t *testing.T) {
	records := []costs.CostRecord{
		{Provider: costs.ProviderGCP, AccountID: "proj-1", Service: "Free Tier Credit", Currency: "USD",
			FreeTier: &costs.FreeTierInfo{Limit: 300, Used: 120, Active: true}},
	}

	summary := NewTracker(DefaultBaselines()).Summarize(records)
	if summary.GCP == nil {
		t.Fatal("expected GCP summary")
	}
	if summary.GCP.UsedAmount != 120 || summary.GCP.FreeTierLimitAmount != 300 {
		t.Errorf("GCP summary = %+v", summary.GCP)
	}
	if summary.GCP.RemainingAmount != 180 {
		t.Errorf("RemainingAmount = %v, want 180", summary.GCP.RemainingAmount)
	}
	if summary.GCP.Currency != "USD" {
		t.Errorf("Currency = %s, want USD", summary.GCP.Currency)
	}
	if math.Abs(summary.GCP.Percentage-40) > 1e-9 {
		t.Errorf("Percentage = %v, want 40", summary.GCP.Percentage)
	}
}

func TestSummarizeGCP_BaselineFillsMissingLimit(t *testing.T) {
	records := []costs.CostRecord{
		{Provider: costs.ProviderGCP, AccountID: "proj-1", Service: "Free Tier Credit", Currency: "USD",
			FreeTier: &costs.FreeTierInfo{Used: 30, Active: true}},
	}

	summary := NewTracker(DefaultBaselines()).Summarize(records)
	if summary.GCP == nil {
		t.Fatal("expected GCP summary")
	}
	if summary.GCP.FreeTierLimitAmount != 300 {
		t.Errorf("FreeTierLimitAmount = %v, want baseline 300", summary.GCP.FreeTierLimitAmount)
	}
}

func TestSummarize_EmptyInput(t *testing.T) {
	summary := NewTracker(DefaultBaselines()).Summarize(nil)
	if summary.AWS != nil || summary.Azure != nil || summary.GCP != nil {
		t.Errorf("expected all summaries omitted for empty input, got %+v", summary)
	}
}
