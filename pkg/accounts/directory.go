// Package accounts resolves which cloud accounts the engine fetches
// costs for. Account lifecycle (onboarding, credentials, deactivation)
// is owned elsewhere; this package only answers "which active accounts
// does this provider have right now".
package accounts

import (
	"context"
	"sort"
	"sync"

	"costwise-hq/atlas/pkg/costs"
)

// Directory lists the accounts connected to the engine. Implementations
// must be safe for concurrent use; the orchestrator queries the
// directory on every aggregation request.
type Directory interface {
	// ListActiveAccounts returns the active accounts for one provider,
	// sorted by account id. Providers with no accounts return an empty
	// slice, not an error.
	ListActiveAccounts(ctx context.Context, provider costs.Provider) ([]costs.AccountRef, error)
}

// StaticDirectory is a Directory backed by a fixed account list, loaded
// from configuration at startup.
type StaticDirectory struct {
	mu     sync.RWMutex
	byProv map[costs.Provider][]costs.AccountRef
}

// NewStaticDirectory builds a directory from the given accounts.
// Inactive accounts are kept but never listed.
func NewStaticDirectory(accounts []costs.AccountRef) *StaticDirectory {
	d := &StaticDirectory{byProv: make(map[costs.Provider][]costs.AccountRef)}
	d.Replace(accounts)
	return d
}

// Replace swaps the directory contents atomically.
func (d *StaticDirectory) Replace(accounts []costs.AccountRef) {
	byProv := make(map[costs.Provider][]costs.AccountRef)
	for _, a := range accounts {
		byProv[a.Provider] = append(byProv[a.Provider], a)
	}
	for p := range byProv {
		sort.Slice(byProv[p], func(i, j int) bool {
			return byProv[p][i].AccountID < byProv[p][j].AccountID
		})
	}

	d.mu.Lock()
	d.byProv = byProv
	d.mu.Unlock()
}

// ListActiveAccounts implements Directory.
func (d *StaticDirectory) ListActiveAccounts(_ context.Context, provider costs.Provider) ([]costs.AccountRef, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []costs.AccountRef
	for _, a := range d.byProv[provider] {
		if a.Active {
			out = append(out, a)
		}
	}
	if out == nil {
		out = []costs.AccountRef{}
	}
	return out, nil
}
