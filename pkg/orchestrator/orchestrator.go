// Package orchestrator coordinates one aggregation pass: resolve the
// active accounts, fan collector calls out under a concurrency bound,
// tolerate per-provider failures, and hand the merged records to the
// aggregation engine, free-tier tracker, and budget manager.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"costwise-hq/atlas/pkg/accounts"
	"costwise-hq/atlas/pkg/aggregate"
	"costwise-hq/atlas/pkg/budget"
	"costwise-hq/atlas/pkg/collectors"
	"costwise-hq/atlas/pkg/costs"
	"costwise-hq/atlas/pkg/currency"
	"costwise-hq/atlas/pkg/freetier"
	"costwise-hq/atlas/pkg/telemetry/metrics"
)

// Options tunes the orchestrator's fan-out behavior.
type Options struct {
	// MaxConcurrentFetches bounds concurrent collector calls across all
	// providers and accounts. Default: 12.
	MaxConcurrentFetches int

	// FetchTimeout is the per-account collector call timeout.
	// Default: 30s.
	FetchTimeout time.Duration

	// RequestTimeout bounds one whole aggregation pass including the
	// previous-period fetch. Default: 2m.
	RequestTimeout time.Duration
}

func (o *Options) applyDefaults() {
	if o.MaxConcurrentFetches < 1 {
		o.MaxConcurrentFetches = 12
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = 30 * time.Second
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 2 * time.Minute
	}
}

// CostsResponse is one aggregation pass's full output: the rollups, the
// free-tier summary, the period fetched, and every collector failure
// that occurred along the way. A response with a non-empty Errors list
// is still a valid partial result.
type CostsResponse struct {
	Period   Period                 `json:"period"`
	Costs    aggregate.Result       `json:"costs"`
	FreeTier freetier.Summary       `json:"freeTier"`
	Errors   []costs.CollectorError `json:"errors,omitempty"`
}

// Orchestrator wires the collectors, converter, aggregation engine,
// free-tier tracker, and budget manager into the engine's operations.
type Orchestrator struct {
	registry  *collectors.Registry
	directory accounts.Directory
	engine    *aggregate.Engine
	tracker   *freetier.Tracker
	budgets   *budget.Manager
	converter *currency.Converter
	metrics   *metrics.Collector
	logger    *slog.Logger
	opts      Options

	displayCurrency string

	// now is replaceable for tests.
	now func() time.Time
}

// Config collects the orchestrator's collaborators.
type Config struct {
	Registry        *collectors.Registry
	Directory       accounts.Directory
	Engine          *aggregate.Engine
	Tracker         *freetier.Tracker
	Budgets         *budget.Manager
	Converter       *currency.Converter
	Metrics         *metrics.Collector // optional
	Logger          *slog.Logger
	DisplayCurrency string
	Options         Options
}

// New creates an orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Registry == nil {
		return nil, errors.New("orchestrator requires a collector registry")
	}
	if cfg.Directory == nil {
		return nil, errors.New("orchestrator requires an account directory")
	}
	if cfg.Engine == nil {
		return nil, errors.New("orchestrator requires an aggregation engine")
	}
	if cfg.Tracker == nil {
		return nil, errors.New("orchestrator requires a free-tier tracker")
	}
	if cfg.Converter == nil {
		return nil, errors.New("orchestrator requires a currency converter")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	display := cfg.DisplayCurrency
	if display == "" {
		display = "USD"
	}
	opts := cfg.Options
	opts.applyDefaults()

	return &Orchestrator{
		registry:        cfg.Registry,
		directory:       cfg.Directory,
		engine:          cfg.Engine,
		tracker:         cfg.Tracker,
		budgets:         cfg.Budgets,
		converter:       cfg.Converter,
		metrics:         cfg.Metrics,
		logger:          logger.With("component", "orchestrator"),
		opts:            opts,
		displayCurrency: display,
		now:             time.Now,
	}, nil
}

// GetAggregatedCosts runs one aggregation pass over the given period,
// converting all amounts into displayCurrency. An empty displayCurrency
// falls back to the configured default; an unsupported code is rejected
// with a ConfigurationError before any collector is called.
// The previous equivalent period is fetched for deltas when
// includePrevious is set. A provider failing on every account still
// appears in the rollup with amount 0; its failures are reported in the
// response's Errors list.
func (o *Orchestrator) GetAggregatedCosts(ctx context.Context, period Period, displayCurrency string, includePrevious bool) (*CostsResponse, error) {
	if displayCurrency == "" {
		displayCurrency = o.displayCurrency
	}
	if !o.converter.Supported(displayCurrency) {
		return nil, &costs.ConfigurationError{
			Field:   "displayCurrency",
			Message: fmt.Sprintf("unsupported currency %q", displayCurrency),
		}
	}

	ctx, cancel := context.WithTimeout(ctx, o.opts.RequestTimeout)
	defer cancel()

	start := o.now()

	current, collErrs, err := o.collect(ctx, period)
	if err != nil {
		return nil, err
	}

	var previous []costs.CostRecord
	if includePrevious {
		prevPeriod := PreviousPeriod(period)
		prev, prevErrs, err := o.collect(ctx, prevPeriod)
		if err != nil {
			return nil, err
		}
		// Previous-period failures degrade deltas, not the response.
		previous = prev
		if len(prevErrs) > 0 {
			o.logger.Warn("previous period fetch incomplete",
				"period", prevPeriod.MonthKey(),
				"failures", len(prevErrs),
			)
		}
	}

	result := o.engine.Aggregate(aggregate.Input{
		Providers:       o.registry.Providers(),
		Current:         current,
		Previous:        previous,
		DisplayCurrency: displayCurrency,
	})

	resp := &CostsResponse{
		Period:   period,
		Costs:    result,
		FreeTier: o.tracker.Summarize(current),
		Errors:   collErrs,
	}

	if o.metrics != nil {
		byProvider := make(map[string]float64, len(result.Providers))
		for _, p := range result.Providers {
			byProvider[string(p.Provider)] = p.Amount
		}
		o.metrics.Cost().RecordAggregation(displayCurrency, result.Total, byProvider)
	}

	o.logger.Info("aggregation pass complete",
		"period", period.MonthKey(),
		"records", len(current),
		"failures", len(collErrs),
		"total", result.Total,
		"currency", displayCurrency,
		"duration", o.now().Sub(start),
	)
	return resp, nil
}

// GetBudgetUsage computes a tenant's current-month budget usage.
// Account spend is converted into the tenant's budget currency before
// comparison.
func (o *Orchestrator) GetBudgetUsage(ctx context.Context, tenantID string) (*budget.Usage, error) {
	if o.budgets == nil {
		return nil, errors.New("budget manager not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, o.opts.RequestTimeout)
	defer cancel()

	period := MonthWindow(o.now())
	settings, err := o.budgets.GetSettings(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	accountCosts, err := o.accountCosts(ctx, period, settings.Currency)
	if err != nil {
		return nil, err
	}
	return o.budgets.Usage(ctx, tenantID, accountCosts, period.MonthKey())
}

// CheckBudgetAlerts evaluates a tenant's thresholds against live
// current-month spend and returns any triggered alerts.
func (o *Orchestrator) CheckBudgetAlerts(ctx context.Context, tenantID string) ([]budget.Alert, error) {
	if o.budgets == nil {
		return nil, errors.New("budget manager not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, o.opts.RequestTimeout)
	defer cancel()

	period := MonthWindow(o.now())
	settings, err := o.budgets.GetSettings(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	accountCosts, err := o.accountCosts(ctx, period, settings.Currency)
	if err != nil {
		return nil, err
	}

	alerts, err := o.budgets.CheckAlerts(ctx, tenantID, accountCosts, period.MonthKey(), o.now().UTC())
	if err != nil {
		return nil, err
	}

	if o.metrics != nil && len(alerts) > 0 {
		o.metrics.Cost().RecordAlerts(string(alerts[0].Mode), len(alerts))
	}
	return alerts, nil
}

// accountCosts fetches the period and reduces it to per-account totals
// in the given currency.
func (o *Orchestrator) accountCosts(ctx context.Context, period Period, inCurrency string) ([]budget.AccountCost, error) {
	records, _, err := o.collect(ctx, period)
	if err != nil {
		return nil, err
	}

	type key struct {
		provider  costs.Provider
		accountID string
	}
	totals := make(map[key]*budget.AccountCost)
	for _, r := range records {
		k := key{r.Provider, r.AccountID}
		ac, ok := totals[k]
		if !ok {
			ac = &budget.AccountCost{
				Provider:    r.Provider,
				AccountID:   r.AccountID,
				AccountName: r.AccountName,
			}
			totals[k] = ac
		}
		ac.Amount += o.converter.Convert(r.Amount, r.Currency, inCurrency)
	}

	out := make([]budget.AccountCost, 0, len(totals))
	for _, ac := range totals {
		out = append(out, *ac)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Provider != out[j].Provider {
			return out[i].Provider < out[j].Provider
		}
		return out[i].AccountID < out[j].AccountID
	})
	return out, nil
}

// collect fans one period's fetches out across all registered providers
// and their active accounts. A failed fetch never aborts the others:
// its error lands in the returned slice and the account contributes no
// records.
func (o *Orchestrator) collect(ctx context.Context, period Period) ([]costs.CostRecord, []costs.CollectorError, error) {
	type task struct {
		collector collectors.Collector
		account   costs.AccountRef
	}

	var tasks []task
	for _, provider := range o.registry.Providers() {
		c, err := o.registry.Get(provider)
		if err != nil {
			return nil, nil, err
		}
		accts, err := o.directory.ListActiveAccounts(ctx, provider)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list accounts for %s: %w", provider, err)
		}
		for _, a := range accts {
			tasks = append(tasks, task{collector: c, account: a})
		}
	}

	results := make([]collectors.FetchResult, len(tasks))
	sem := make(chan struct{}, o.opts.MaxConcurrentFetches)
	var wg sync.WaitGroup

	for i, tk := range tasks {
		wg.Add(1)
		go func(i int, tk task) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = o.fetchOne(ctx, tk.collector, tk.account, period)
		}(i, tk)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("aggregation pass aborted: %w", err)
	}

	var records []costs.CostRecord
	var collErrs []costs.CollectorError
	for _, res := range results {
		records = append(records, res.Records...)
		if res.Err != nil {
			collErrs = append(collErrs, *res.Err)
		}
	}

	// Task order is deterministic (providers canonical, accounts sorted),
	// so the merged record order is too.
	return records, collErrs, nil
}

// fetchOne runs one collector call under the per-fetch timeout.
func (o *Orchestrator) fetchOne(ctx context.Context, c collectors.Collector, account costs.AccountRef, period Period) collectors.FetchResult {
	ctx, cancel := context.WithTimeout(ctx, o.opts.FetchTimeout)
	defer cancel()

	start := o.now()
	records, err := c.Fetch(ctx, account, period.From, period.To)
	elapsed := time.Since(start)

	provider := c.Provider()
	if o.metrics != nil {
		o.metrics.Fetch().RecordFetch(string(provider), elapsed, err == nil)
	}

	if err != nil {
		cerr := asCollectorError(provider, account.AccountID, err)
		if o.metrics != nil {
			o.metrics.Fetch().RecordFailure(string(provider), cerr.Transient)
		}
		o.logger.Warn("collector fetch failed",
			"provider", provider,
			"account_id", account.AccountID,
			"transient", cerr.Transient,
			"error", err,
		)
		return collectors.FetchResult{Account: account, Err: cerr}
	}

	return collectors.FetchResult{Account: account, Records: records}
}

func asCollectorError(provider costs.Provider, accountID string, err error) *costs.CollectorError {
	var cerr *costs.CollectorError
	if errors.As(err, &cerr) {
		return cerr
	}
	return collectors.WrapFetchError(provider, accountID, err)
}
