package collectors

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"costwise-hq/atlas/pkg/costs"
)

type stubCollector struct {
	provider costs.Provider
}

func (s *stubCollector) Fetch(_ context.Context, _ costs.AccountRef, _, _ time.Time) ([]costs.CostRecord, error) {
	return nil, nil
}

func (s *stubCollector) Provider() costs.Provider {
	return s.provider
}

func TestRegistry_GetAndProviders(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stubCollector{provider: costs.ProviderNCP})
	reg.Register(&stubCollector{provider: costs.ProviderAWS})

	c, err := reg.Get(costs.ProviderAWS)
	if err != nil {
		t.Fatalf("Get(AWS) failed: %v", err)
	}
	if c.Provider() != costs.ProviderAWS {
		t.Errorf("Get(AWS) returned collector for %s", c.Provider())
	}

	if _, err := reg.Get(costs.ProviderGCP); err == nil {
		t.Error("expected error for unregistered provider")
	}

	// Canonical order regardless of registration order.
	providers := reg.Providers()
	want := []costs.Provider{costs.ProviderAWS, costs.ProviderNCP}
	if len(providers) != len(want) {
		t.Fatalf("Providers() = %v, want %v", providers, want)
	}
	for i := range want {
		if providers[i] != want[i] {
			t.Errorf("Providers()[%d] = %s, want %s", i, providers[i], want[i])
		}
	}
}

type terminalErr struct{ msg string }

func (e *terminalErr) Error() string  { return e.msg }
func (e *terminalErr) Terminal() bool { return true }

func TestWrapFetchError_Classification(t *testing.T) {
	transient := WrapFetchError(costs.ProviderAWS, "1", errors.New("dial tcp: i/o timeout"))
	if !transient.Transient {
		t.Error("plain errors should classify as transient")
	}

	terminal := WrapFetchError(costs.ProviderAWS, "1", &terminalErr{msg: "account deactivated"})
	if terminal.Transient {
		t.Error("terminal source errors should classify as terminal")
	}

	wrapped := WrapFetchError(costs.ProviderAWS, "1",
		fmt.Errorf("fetch failed: %w", &terminalErr{msg: "bad credentials"}))
	if wrapped.Transient {
		t.Error("terminal marker should survive wrapping")
	}
}
