package freetier

import (
	"sort"

	"costwise-hq/atlas/pkg/costs"
)

// Baselines holds the provider free-tier constants. They are read-only,
// process-wide configuration injected at construction time so tests can
// substitute fixed values.
type Baselines struct {
	// AzureMonthlyHours is the B1s-equivalent free VM-hours per month.
	AzureMonthlyHours float64

	// GCPCreditAmount is the free-tier credit granted per project, used
	// when the quota feed does not supply its own limit.
	GCPCreditAmount float64

	// GCPCreditCurrency is the currency of GCPCreditAmount.
	GCPCreditCurrency string
}

// DefaultBaselines returns the published provider baselines.
func DefaultBaselines() Baselines {
	return Baselines{
		AzureMonthlyHours: 750,
		GCPCreditAmount:   300,
		GCPCreditCurrency: "USD",
	}
}

// AWSSummary reports AWS free-tier consumption in instance-hours.
type AWSSummary struct {
	TotalUsage float64 `json:"totalUsage"`
	TotalLimit float64 `json:"totalLimit"`
	Remaining  float64 `json:"remaining"`

	// Percentage is the arithmetic mean of per-account percentages, not
	// usage-weighted, so one large account cannot mask others nearing
	// their limit.
	Percentage float64 `json:"percentage"`
}

// AzureSummary reports Azure free-tier consumption in B1s VM-hours.
type AzureSummary struct {
	TotalUsage float64 `json:"totalUsage"`
	TotalLimit float64 `json:"totalLimit"`
	Remaining  float64 `json:"remaining"`
	Percentage float64 `json:"percentage"`

	// EligibleVMCount is informational only; it does not enter the
	// percentage formula.
	EligibleVMCount int `json:"eligibleVmCount"`
}

// GCPSummary reports GCP free-tier credit consumption as a currency
// amount.
type GCPSummary struct {
	UsedAmount          float64 `json:"usedAmount"`
	FreeTierLimitAmount float64 `json:"freeTierLimitAmount"`
	RemainingAmount     float64 `json:"remainingAmount"`
	Percentage          float64 `json:"percentage"`
	Currency            string  `json:"currency"`
}

// Summary bundles the per-provider free-tier summaries. A nil family
// means no free-tier-eligible resource was found for that provider,
// which callers must distinguish from "fully exhausted".
type Summary struct {
	AWS   *AWSSummary   `json:"awsFreeTier,omitempty"`
	Azure *AzureSummary `json:"azureFreeTier,omitempty"`
	GCP   *GCPSummary   `json:"gcpFreeTier,omitempty"`
}

// Tracker derives free-tier quota summaries from collected cost records.
type Tracker struct {
	baselines Baselines
}

// NewTracker creates a tracker with the given baselines.
func NewTracker(baselines Baselines) *Tracker {
	return &Tracker{baselines: baselines}
}

// Summarize derives all provider summaries from one fetch's records.
func (t *Tracker) Summarize(records []costs.CostRecord) Summary {
	return Summary{
		AWS:   t.summarizeAWS(records),
		Azure: t.summarizeAzure(records),
		GCP:   t.summarizeGCP(records),
	}
}

// awsAccount accumulates one AWS account's free-tier state across the
// date range.
type awsAccount struct {
	usageByService map[string]float64
	limitByService map[string]float64
	totalCost      float64
}

// summarizeAWS sums usage and limits across services, then accounts.
// Free-tier counters are cumulative-to-date, so per-service usage is
// the maximum observed across the range, never the sum.
func (t *Tracker) summarizeAWS(records []costs.CostRecord) *AWSSummary {
	byAccount := make(map[string]*awsAccount)
	for _, rec := range records {
		if rec.Provider != costs.ProviderAWS {
			continue
		}
		acct, ok := byAccount[rec.AccountID]
		if !ok {
			acct = &awsAccount{
				usageByService: make(map[string]float64),
				limitByService: make(map[string]float64),
			}
			byAccount[rec.AccountID] = acct
		}
		acct.totalCost += rec.Amount
		if rec.FreeTier != nil && rec.FreeTier.Limit > 0 {
			if rec.FreeTier.Used > acct.usageByService[rec.Service] {
				acct.usageByService[rec.Service] = rec.FreeTier.Used
			}
			acct.limitByService[rec.Service] = rec.FreeTier.Limit
		}
	}
	if len(byAccount) == 0 {
		return nil
	}

	var totalUsage, totalLimit, pctSum float64
	for _, acct := range byAccount {
		var usage, limit float64
		for service, u := range acct.usageByService {
			usage += u
			limit += acct.limitByService[service]
		}
		totalUsage += usage
		totalLimit += limit

		switch {
		case limit > 0:
			pctSum += percentage(usage, limit)
		case acct.totalCost > 0:
			// Billable usage with no free-tier service left: quota is
			// exhausted for this account.
			pctSum += 100
		default:
			pctSum += 0
		}
	}

	if totalLimit <= 0 {
		return nil
	}

	return &AWSSummary{
		TotalUsage: totalUsage,
		TotalLimit: totalLimit,
		Remaining:  remaining(totalUsage, totalLimit),
		Percentage: pctSum / float64(len(byAccount)),
	}
}

// summarizeAzure sums B1s VM-hours against the fixed monthly baseline.
func (t *Tracker) summarizeAzure(records []costs.CostRecord) *AzureSummary {
	var usage float64
	var vmCount int
	for _, rec := range records {
		if rec.Provider != costs.ProviderAzure || rec.FreeTier == nil {
			continue
		}
		usage += rec.FreeTier.Used
		vmCount++
	}
	if vmCount == 0 || t.baselines.AzureMonthlyHours <= 0 {
		return nil
	}

	limit := t.baselines.AzureMonthlyHours
	return &AzureSummary{
		TotalUsage:      usage,
		TotalLimit:      limit,
		Remaining:       remaining(usage, limit),
		Percentage:      percentage(usage, limit),
		EligibleVMCount: vmCount,
	}
}

// summarizeGCP sums credit usage per project. A record-supplied limit
// wins; the baseline credit fills in when the feed has none.
func (t *Tracker) summarizeGCP(records []costs.CostRecord) *GCPSummary {
	type projectCredit struct {
		used  float64
		limit float64
	}
	byProject := make(map[string]*projectCredit)
	currency := t.baselines.GCPCreditCurrency

	for _, rec := range records {
		if rec.Provider != costs.ProviderGCP || rec.FreeTier == nil {
			continue
		}
		pc, ok := byProject[rec.AccountID]
		if !ok {
			pc = &projectCredit{}
			byProject[rec.AccountID] = pc
		}
		if rec.FreeTier.Used > pc.used {
			pc.used = rec.FreeTier.Used
		}
		limit := rec.FreeTier.Limit
		if limit <= 0 {
			limit = t.baselines.GCPCreditAmount
		}
		if limit > pc.limit {
			pc.limit = limit
		}
		if rec.Currency != "" {
			currency = rec.Currency
		}
	}
	if len(byProject) == 0 {
		return nil
	}

	var used, limit float64
	for _, pc := range sortedProjects(byProject) {
		used += pc.used
		limit += pc.limit
	}
	if limit <= 0 {
		return nil
	}

	return &GCPSummary{
		UsedAmount:          used,
		FreeTierLimitAmount: limit,
		RemainingAmount:     remaining(used, limit),
		Percentage:          percentage(used, limit),
		Currency:            currency,
	}
}

// sortedProjects returns credits in project-id order so float summation
// is deterministic across runs.
func sortedProjects[V any](m map[string]V) []V {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]V, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

// percentage returns used/limit clamped to [0, 100].
func percentage(used, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	pct := used / limit * 100
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// remaining returns limit-used floored at zero.
func remaining(used, limit float64) float64 {
	if used >= limit {
		return 0
	}
	return limit - used
}
