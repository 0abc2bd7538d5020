package budget

import (
	"testing"
	"time"

	"costwise-hq/atlas/pkg/costs"
)

// =============================================================================
// ComputeUsage Tests
// =============================================================================

func TestComputeUsageConsolidated(t *testing.T) {
	settings := &Settings{
		Mode:               ModeConsolidated,
		MonthlyBudgetLimit: 1000000,
		AlertThreshold:     80,
		Currency:           "KRW",
	}
	accounts := []AccountCost{
		{Provider: costs.ProviderNCP, AccountID: "ncp-main", AccountName: "NCP Main", Amount: 600000},
		{Provider: costs.ProviderAWS, AccountID: "111", AccountName: "Prod", Amount: 250000},
	}

	usage := ComputeUsage(settings, accounts, "2026-08")

	if usage.CurrentMonthCost != 850000 {
		t.Errorf("CurrentMonthCost = %v, want 850000", usage.CurrentMonthCost)
	}
	if usage.UsagePercentage != 85.0 {
		t.Errorf("UsagePercentage = %v, want 85.0", usage.UsagePercentage)
	}
	if !usage.ThresholdReached {
		t.Error("expected threshold reached at 85% with 80% threshold")
	}
	if usage.Currency != "KRW" {
		t.Errorf("Currency = %q, want KRW", usage.Currency)
	}
	if usage.Month != "2026-08" {
		t.Errorf("Month = %q, want 2026-08", usage.Month)
	}

	// In consolidated mode no account has an explicit budget.
	for _, au := range usage.AccountUsages {
		if au.HasBudget {
			t.Errorf("account %s/%s has HasBudget=true in consolidated mode", au.Provider, au.AccountID)
		}
		if au.MonthlyBudgetLimit != nil {
			t.Errorf("account %s/%s carries a limit in consolidated mode", au.Provider, au.AccountID)
		}
	}
}

func TestComputeUsageAccountSpecific(t *testing.T) {
	threshold := 90.0
	settings := &Settings{
		Mode:               ModeAccountSpecific,
		MonthlyBudgetLimit: 10000,
		AlertThreshold:     80,
		Currency:           "USD",
		AccountBudgets: []AccountBudget{
			{Provider: costs.ProviderAWS, AccountID: "111", MonthlyBudgetLimit: 1000, AlertThreshold: &threshold, Enabled: true},
			{Provider: costs.ProviderAWS, AccountID: "222", MonthlyBudgetLimit: 500, Enabled: false},
		},
	}
	accounts := []AccountCost{
		{Provider: costs.ProviderAWS, AccountID: "111", AccountName: "Prod", Amount: 950},
		{Provider: costs.ProviderAWS, AccountID: "222", AccountName: "Dev", Amount: 400},
		{Provider: costs.ProviderGCP, AccountID: "proj-1", AccountName: "Analytics", Amount: 100},
	}

	usage := ComputeUsage(settings, accounts, "2026-08")

	byKey := make(map[string]AccountUsage)
	for _, au := range usage.AccountUsages {
		byKey[string(au.Provider)+"/"+au.AccountID] = au
	}

	prod := byKey["AWS/111"]
	if !prod.HasBudget {
		t.Error("AWS/111 has an enabled budget; HasBudget should be true")
	}
	if prod.MonthlyBudgetLimit == nil || *prod.MonthlyBudgetLimit != 1000 {
		t.Errorf("AWS/111 limit = %v, want 1000", prod.MonthlyBudgetLimit)
	}
	if prod.UsagePercentage != 95.0 {
		t.Errorf("AWS/111 UsagePercentage = %v, want 95.0", prod.UsagePercentage)
	}
	if !prod.ThresholdReached {
		t.Error("AWS/111 at 95% with a 90% threshold should report threshold reached")
	}

	// Disabled entries behave as if no budget exists.
	dev := byKey["AWS/222"]
	if dev.HasBudget {
		t.Error("AWS/222 budget is disabled; HasBudget should be false")
	}

	// Accounts without an entry fall back to the consolidated limit for
	// display but never gain a budget.
	gcp := byKey["GCP/proj-1"]
	if gcp.HasBudget {
		t.Error("GCP/proj-1 has no budget entry; HasBudget should be false")
	}
	if gcp.UsagePercentage != 1.0 {
		t.Errorf("GCP/proj-1 UsagePercentage = %v, want 1.0 against consolidated 10000", gcp.UsagePercentage)
	}
}

func TestComputeUsageAccountOrdering(t *testing.T) {
	settings := DefaultSettings("USD")
	accounts := []AccountCost{
		{Provider: costs.ProviderNCP, AccountID: "n1", Amount: 1},
		{Provider: costs.ProviderAWS, AccountID: "222", Amount: 1},
		{Provider: costs.ProviderAWS, AccountID: "111", Amount: 1},
	}

	usage := ComputeUsage(settings, accounts, "2026-08")

	want := []string{"AWS/111", "AWS/222", "NCP/n1"}
	for i, au := range usage.AccountUsages {
		got := string(au.Provider) + "/" + au.AccountID
		if got != want[i] {
			t.Errorf("AccountUsages[%d] = %s, want %s", i, got, want[i])
		}
	}
}

func TestUsagePercentClamping(t *testing.T) {
	tests := []struct {
		name  string
		cost  float64
		limit float64
		want  float64
	}{
		{"normal", 850, 1000, 85.0},
		{"over budget clamps to 100", 2500, 1000, 100.0},
		{"zero limit uses floor of 1", 0.5, 0, 50.0},
		{"zero cost", 0, 1000, 0},
		{"negative cost clamps to 0", -10, 1000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := usagePercent(tt.cost, tt.limit); got != tt.want {
				t.Errorf("usagePercent(%v, %v) = %v, want %v", tt.cost, tt.limit, got, tt.want)
			}
		})
	}
}

// =============================================================================
// EvaluateAlerts Tests
// =============================================================================

func TestEvaluateAlertsConsolidated(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	settings := &Settings{
		Mode:               ModeConsolidated,
		MonthlyBudgetLimit: 1000,
		AlertThreshold:     80,
		Currency:           "USD",
	}

	under := ComputeUsage(settings, []AccountCost{{Provider: costs.ProviderAWS, AccountID: "111", Amount: 700}}, "2026-08")
	if alerts := EvaluateAlerts(under, now); len(alerts) != 0 {
		t.Errorf("got %d alerts under threshold, want 0", len(alerts))
	}

	over := ComputeUsage(settings, []AccountCost{{Provider: costs.ProviderAWS, AccountID: "111", Amount: 800}}, "2026-08")
	alerts := EvaluateAlerts(over, now)
	if len(alerts) != 1 {
		t.Fatalf("got %d alerts at threshold, want 1", len(alerts))
	}
	a := alerts[0]
	if a.ID == "" {
		t.Error("alert ID should be populated")
	}
	if a.Mode != ModeConsolidated {
		t.Errorf("alert Mode = %q, want %q", a.Mode, ModeConsolidated)
	}
	if a.Provider != "" || a.AccountID != "" {
		t.Errorf("consolidated alert should carry no account scope, got %s/%s", a.Provider, a.AccountID)
	}
	if a.UsagePercentage != 80.0 {
		t.Errorf("alert UsagePercentage = %v, want 80.0", a.UsagePercentage)
	}
	if !a.TriggeredAt.Equal(now) {
		t.Errorf("TriggeredAt = %v, want %v", a.TriggeredAt, now)
	}
}

func TestEvaluateAlertsAccountSpecific(t *testing.T) {
	now := time.Now().UTC()
	settings := &Settings{
		Mode:               ModeAccountSpecific,
		MonthlyBudgetLimit: 100000,
		AlertThreshold:     80,
		Currency:           "USD",
		AccountBudgets: []AccountBudget{
			{Provider: costs.ProviderAWS, AccountID: "111", MonthlyBudgetLimit: 1000, Enabled: true},
			{Provider: costs.ProviderAWS, AccountID: "222", MonthlyBudgetLimit: 1000, Enabled: true},
		},
	}
	accounts := []AccountCost{
		{Provider: costs.ProviderAWS, AccountID: "111", AccountName: "Prod", Amount: 900},
		{Provider: costs.ProviderAWS, AccountID: "222", AccountName: "Dev", Amount: 100},
		// No budget entry; must not alert even at extreme usage.
		{Provider: costs.ProviderNCP, AccountID: "n1", AccountName: "NCP", Amount: 99999},
	}

	usage := ComputeUsage(settings, accounts, "2026-08")
	alerts := EvaluateAlerts(usage, now)

	if len(alerts) != 1 {
		t.Fatalf("got %d alerts, want 1 (only the over-threshold budgeted account)", len(alerts))
	}
	a := alerts[0]
	if a.Provider != costs.ProviderAWS || a.AccountID != "111" {
		t.Errorf("alert scope = %s/%s, want AWS/111", a.Provider, a.AccountID)
	}
	if a.BudgetLimit != 1000 {
		t.Errorf("alert BudgetLimit = %v, want 1000", a.BudgetLimit)
	}
	if a.UsagePercentage != 90.0 {
		t.Errorf("alert UsagePercentage = %v, want 90.0", a.UsagePercentage)
	}
}

func TestEvaluateAlertsUniqueIDs(t *testing.T) {
	now := time.Now().UTC()
	settings := &Settings{
		Mode:               ModeAccountSpecific,
		MonthlyBudgetLimit: 1000,
		AlertThreshold:     50,
		Currency:           "USD",
		AccountBudgets: []AccountBudget{
			{Provider: costs.ProviderAWS, AccountID: "111", MonthlyBudgetLimit: 100, Enabled: true},
			{Provider: costs.ProviderAWS, AccountID: "222", MonthlyBudgetLimit: 100, Enabled: true},
		},
	}
	accounts := []AccountCost{
		{Provider: costs.ProviderAWS, AccountID: "111", Amount: 90},
		{Provider: costs.ProviderAWS, AccountID: "222", Amount: 95},
	}

	alerts := EvaluateAlerts(ComputeUsage(settings, accounts, "2026-08"), now)
	if len(alerts) != 2 {
		t.Fatalf("got %d alerts, want 2", len(alerts))
	}
	if alerts[0].ID == alerts[1].ID {
		t.Error("alert IDs should be unique")
	}
}
