package collectors

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"costwise-hq/atlas/pkg/costs"
)

// Collector is the contract every provider cost adapter implements.
// Implementations isolate provider-specific quirks (granularity, billing
// periods, currencies, free-tier metadata) behind one normalized shape.
//
// Fetch must never abort sibling collectors: on any transport or auth
// failure it returns an empty record set plus a *costs.CollectorError
// tagged with provider and account. A successful fetch that finds no
// billable usage returns an empty slice and a nil error.
type Collector interface {
	// Fetch returns normalized cost records for one account over
	// [from, to] inclusive.
	Fetch(ctx context.Context, account costs.AccountRef, from, to time.Time) ([]costs.CostRecord, error)

	// Provider returns the provider this collector serves.
	Provider() costs.Provider
}

// FetchResult is the outcome of one collector invocation. Exactly one of
// Records or Err carries information; a failed fetch has an empty record
// set so downstream aggregation can consume results uniformly.
type FetchResult struct {
	Account costs.AccountRef
	Records []costs.CostRecord
	Err     *costs.CollectorError
}

// Registry dispatches accounts to the collector for their provider.
// It is a closed lookup table, populated once at startup.
type Registry struct {
	mu         sync.RWMutex
	collectors map[costs.Provider]Collector
}

// NewRegistry creates an empty collector registry.
func NewRegistry() *Registry {
	return &Registry{collectors: make(map[costs.Provider]Collector)}
}

// Register adds a collector for its provider, replacing any previous one.
func (r *Registry) Register(c Collector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collectors[c.Provider()] = c
}

// Get returns the collector for a provider.
func (r *Registry) Get(provider costs.Provider) (Collector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.collectors[provider]
	if !ok {
		return nil, fmt.Errorf("no collector registered for provider %s", provider)
	}
	return c, nil
}

// Providers returns the providers with a registered collector, in the
// canonical provider order.
func (r *Registry) Providers() []costs.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]costs.Provider, 0, len(r.collectors))
	for _, p := range costs.Providers {
		if _, ok := r.collectors[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

// TerminalError marks a source error as non-retryable (deactivated
// account, malformed credentials). Source clients attach this to errors
// that will not resolve on their own; everything else is treated as
// transient.
type TerminalError interface {
	error
	Terminal() bool
}

// IsTerminal reports whether err (or anything it wraps) is marked
// terminal.
func IsTerminal(err error) bool {
	var te TerminalError
	return errors.As(err, &te) && te.Terminal()
}

// WrapFetchError converts a source error into a collector error tagged
// with provider and account.
func WrapFetchError(provider costs.Provider, accountID string, err error) *costs.CollectorError {
	return costs.NewCollectorError(provider, accountID, err.Error(), !IsTerminal(err), err)
}
