package aggregate

import (
	"math"
	"sort"

	"github.com/samber/lo"

	"costwise-hq/atlas/pkg/costs"
	"costwise-hq/atlas/pkg/currency"
)

// Input is one aggregation pass over collected records. Previous is the
// equivalent prior period (same length, immediately preceding) and may
// be nil when the caller did not fetch it.
type Input struct {
	// Providers is the set of providers that were fetched, whether or
	// not they produced records. A provider that errored on every
	// account still appears in the output with amount 0; a provider
	// never connected does not appear at all.
	Providers []costs.Provider

	// Current holds the current period's records.
	Current []costs.CostRecord

	// Previous holds the prior period's records, or nil.
	Previous []costs.CostRecord

	// DisplayCurrency is the single currency all amounts are converted
	// into before any summation.
	DisplayCurrency string
}

// AccountCost is one account's converted total within a provider rollup.
type AccountCost struct {
	AccountID      string  `json:"accountId"`
	Name           string  `json:"name"`
	Amount         float64 `json:"amount"`
	FreeTierActive bool    `json:"isFreeTierActive"`
}

// ProviderCost is one provider's rollup in the display currency. Each
// provider appears at most once in a result.
type ProviderCost struct {
	Provider       costs.Provider `json:"provider"`
	Amount         float64        `json:"amount"`
	PreviousAmount *float64       `json:"previousAmount,omitempty"`
	Accounts       []AccountCost  `json:"accounts"`
}

// ServiceCost is one service's cross-provider rollup with its rank and
// running share of the total.
type ServiceCost struct {
	Service           string   `json:"service"`
	Amount            float64  `json:"amount"`
	PreviousAmount    *float64 `json:"previousAmount,omitempty"`
	Rank              int      `json:"rank"`
	CumulativePercent float64  `json:"cumulativePercent"`
}

// Result is one aggregation pass's output. Ordering is deterministic:
// providers follow canonical provider order, accounts sort by account id
// ascending, services sort by amount descending with ties broken by
// name ascending.
type Result struct {
	Providers       []ProviderCost `json:"providers"`
	Services        []ServiceCost  `json:"byService"`
	Total           float64        `json:"total"`
	PreviousTotal   *float64       `json:"previousTotal,omitempty"`
	ChangePercent   *float64       `json:"changePercent,omitempty"`
	DisplayCurrency string         `json:"currency"`
}

// Engine merges collector outputs across providers and accounts into
// comparable rollups. It is stateless; all conversion flows through the
// injected converter.
type Engine struct {
	converter *currency.Converter
}

// NewEngine creates an aggregation engine using the given converter.
func NewEngine(converter *currency.Converter) *Engine {
	return &Engine{converter: converter}
}

// Aggregate computes provider, account, and service rollups plus
// period-over-period deltas for the input.
func (e *Engine) Aggregate(in Input) Result {
	res := Result{
		Providers:       e.providerRollup(in),
		Services:        e.serviceRollup(in),
		DisplayCurrency: in.DisplayCurrency,
	}

	res.Total = lo.SumBy(res.Providers, func(p ProviderCost) float64 { return p.Amount })

	if in.Previous != nil {
		prevTotal := e.convertedSum(in.Previous, in.DisplayCurrency)
		change := ChangePercent(res.Total, prevTotal)
		res.PreviousTotal = &prevTotal
		res.ChangePercent = &change
	}

	return res
}

// ChangePercent is the period-over-period delta. The max(1, previous)
// floor avoids divide-by-zero: a previous value of 0 with a nonzero
// current value reports large-but-finite growth, never infinity.
func ChangePercent(current, previous float64) float64 {
	return (current - previous) / math.Max(1, previous) * 100
}

// providerRollup sums converted amounts per provider and per account
// within each provider.
func (e *Engine) providerRollup(in Input) []ProviderCost {
	currentByProvider := lo.GroupBy(in.Current, func(r costs.CostRecord) costs.Provider { return r.Provider })
	previousByProvider := lo.GroupBy(in.Previous, func(r costs.CostRecord) costs.Provider { return r.Provider })

	fetched := make(map[costs.Provider]bool, len(in.Providers))
	for _, p := range in.Providers {
		fetched[p] = true
	}

	out := make([]ProviderCost, 0, len(in.Providers))
	for _, provider := range costs.Providers {
		if !fetched[provider] {
			continue
		}

		pc := ProviderCost{
			Provider: provider,
			Accounts: e.accountRollup(currentByProvider[provider], in.DisplayCurrency),
		}
		pc.Amount = lo.SumBy(pc.Accounts, func(a AccountCost) float64 { return a.Amount })

		if in.Previous != nil {
			prev := e.convertedSum(previousByProvider[provider], in.DisplayCurrency)
			pc.PreviousAmount = &prev
		}

		out = append(out, pc)
	}
	return out
}

// accountRollup sums one provider's records per account, sorted by
// account id ascending.
func (e *Engine) accountRollup(records []costs.CostRecord, displayCurrency string) []AccountCost {
	byAccount := make(map[string]*AccountCost)
	for _, rec := range records {
		acct, ok := byAccount[rec.AccountID]
		if !ok {
			acct = &AccountCost{AccountID: rec.AccountID, Name: rec.AccountName}
			byAccount[rec.AccountID] = acct
		}
		acct.Amount += e.converter.Convert(rec.Amount, rec.Currency, displayCurrency)
		if rec.FreeTier != nil && rec.FreeTier.Active {
			acct.FreeTierActive = true
		}
	}

	out := make([]AccountCost, 0, len(byAccount))
	for _, acct := range byAccount {
		out = append(out, *acct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out
}

// serviceRollup sums converted amounts per service across providers,
// then ranks descending and assigns cumulative percentages.
//
// Services merge by name only: a same-named service from two providers
// lands in one row. This mirrors the product's current behavior; the
// provider stays on the underlying records, so namespacing would be a
// localized change here if ever wanted.
func (e *Engine) serviceRollup(in Input) []ServiceCost {
	current := make(map[string]float64)
	for _, rec := range in.Current {
		current[rec.Service] += e.converter.Convert(rec.Amount, rec.Currency, in.DisplayCurrency)
	}

	var previous map[string]float64
	if in.Previous != nil {
		previous = make(map[string]float64)
		for _, rec := range in.Previous {
			previous[rec.Service] += e.converter.Convert(rec.Amount, rec.Currency, in.DisplayCurrency)
		}
	}

	out := make([]ServiceCost, 0, len(current))
	for service, amount := range current {
		sc := ServiceCost{Service: service, Amount: amount}
		if previous != nil {
			prev := previous[service]
			sc.PreviousAmount = &prev
		}
		out = append(out, sc)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Service < out[j].Service
	})

	total := lo.SumBy(out, func(s ServiceCost) float64 { return s.Amount })
	var running float64
	for i := range out {
		out[i].Rank = i + 1
		running += out[i].Amount
		if total > 0 {
			out[i].CumulativePercent = running / total * 100
		}
	}
	return out
}

// convertedSum converts every record into the display currency and sums.
func (e *Engine) convertedSum(records []costs.CostRecord, displayCurrency string) float64 {
	return lo.SumBy(records, func(r costs.CostRecord) float64 {
		return e.converter.Convert(r.Amount, r.Currency, displayCurrency)
	})
}
