package budget

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// ComputeUsage derives a tenant's budget usage from its settings and
// current-month account costs. It is a pure function of its inputs:
// there is no persisted state machine to drift out of sync with live
// cost data.
//
// All percentages are computed against max(1, limit) and clamped to
// [0, 100], so a zero limit can never divide by zero and an over-budget
// scope reports exactly 100.
func ComputeUsage(s *Settings, accounts []AccountCost, month string) *Usage {
	total := lo.SumBy(accounts, func(a AccountCost) float64 { return a.Amount })
	totalPct := usagePercent(total, s.MonthlyBudgetLimit)

	usage := &Usage{
		Mode:               s.Mode,
		MonthlyBudgetLimit: s.MonthlyBudgetLimit,
		AlertThreshold:     s.AlertThreshold,
		CurrentMonthCost:   total,
		UsagePercentage:    totalPct,
		ThresholdReached:   totalPct >= s.AlertThreshold,
		Month:              month,
		Currency:           s.Currency,
		AccountUsages:      make([]AccountUsage, 0, len(accounts)),
	}

	sorted := make([]AccountCost, len(accounts))
	copy(sorted, accounts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Provider != sorted[j].Provider {
			return sorted[i].Provider < sorted[j].Provider
		}
		return sorted[i].AccountID < sorted[j].AccountID
	})

	for _, acct := range sorted {
		usage.AccountUsages = append(usage.AccountUsages, s.accountUsage(acct))
	}
	return usage
}

// accountUsage computes one account's usage row. In ACCOUNT_SPECIFIC
// mode an explicit enabled budget supplies the limit and threshold;
// everything else falls back to the consolidated values for display
// without creating a budget.
func (s *Settings) accountUsage(acct AccountCost) AccountUsage {
	au := AccountUsage{
		Provider:         acct.Provider,
		AccountID:        acct.AccountID,
		AccountName:      acct.AccountName,
		CurrentMonthCost: acct.Amount,
	}

	limit := s.MonthlyBudgetLimit
	threshold := s.AlertThreshold

	if s.Mode == ModeAccountSpecific {
		if ab := s.accountBudgetFor(acct.Provider, acct.AccountID); ab != nil {
			au.HasBudget = true
			limit = ab.MonthlyBudgetLimit
			au.MonthlyBudgetLimit = &ab.MonthlyBudgetLimit
			if ab.AlertThreshold != nil {
				threshold = *ab.AlertThreshold
			}
			au.AlertThreshold = &threshold
		}
	}

	au.UsagePercentage = usagePercent(acct.Amount, limit)
	au.ThresholdReached = au.UsagePercentage >= threshold
	return au
}

// EvaluateAlerts produces one alert per scope at or over its threshold,
// computed fresh from the given usage. In CONSOLIDATED mode the only
// scope is the tenant; in ACCOUNT_SPECIFIC mode each account with an
// explicit budget is its own scope.
func EvaluateAlerts(usage *Usage, now time.Time) []Alert {
	var alerts []Alert

	switch usage.Mode {
	case ModeAccountSpecific:
		for _, au := range usage.AccountUsages {
			if !au.HasBudget || !au.ThresholdReached {
				continue
			}
			alerts = append(alerts, Alert{
				ID:               uuid.New().String(),
				Mode:             usage.Mode,
				Provider:         au.Provider,
				AccountID:        au.AccountID,
				AccountName:      au.AccountName,
				BudgetLimit:      *au.MonthlyBudgetLimit,
				CurrentMonthCost: au.CurrentMonthCost,
				UsagePercentage:  au.UsagePercentage,
				Threshold:        *au.AlertThreshold,
				Month:            usage.Month,
				Currency:         usage.Currency,
				TriggeredAt:      now,
				Message: fmt.Sprintf("%s account %s has used %.1f%% of its %s budget for %s",
					au.Provider, au.AccountName, au.UsagePercentage, usage.Currency, usage.Month),
			})
		}

	default:
		if usage.ThresholdReached {
			alerts = append(alerts, Alert{
				ID:               uuid.New().String(),
				Mode:             usage.Mode,
				BudgetLimit:      usage.MonthlyBudgetLimit,
				CurrentMonthCost: usage.CurrentMonthCost,
				UsagePercentage:  usage.UsagePercentage,
				Threshold:        usage.AlertThreshold,
				Month:            usage.Month,
				Currency:         usage.Currency,
				TriggeredAt:      now,
				Message: fmt.Sprintf("consolidated spend has reached %.1f%% of the monthly %s budget for %s",
					usage.UsagePercentage, usage.Currency, usage.Month),
			})
		}
	}

	return alerts
}

// usagePercent returns cost over max(1, limit), clamped to [0, 100].
func usagePercent(cost, limit float64) float64 {
	pct := cost / math.Max(1, limit) * 100
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}
