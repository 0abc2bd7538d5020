package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"costwise-hq/atlas/pkg/budget"
	"costwise-hq/atlas/pkg/budget/storage"
)

type fakeSource struct {
	mu     sync.Mutex
	alerts map[string][]budget.Alert
	errs   map[string]error
	calls  []string
}

func (f *fakeSource) CheckBudgetAlerts(_ context.Context, tenantID string) ([]budget.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, tenantID)
	if err, ok := f.errs[tenantID]; ok {
		return nil, err
	}
	return f.alerts[tenantID], nil
}

type captureSink struct {
	mu        sync.Mutex
	delivered map[string][]budget.Alert
}

func (c *captureSink) Deliver(_ context.Context, tenantID string, alerts []budget.Alert) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.delivered == nil {
		c.delivered = make(map[string][]budget.Alert)
	}
	c.delivered[tenantID] = append(c.delivered[tenantID], alerts...)
	return nil
}

func seedTenants(t *testing.T, store budget.Store, ids ...string) *budget.Manager {
	t.Helper()
	for _, id := range ids {
		if err := store.Save(context.Background(), id, budget.DefaultSettings("USD")); err != nil {
			t.Fatalf("failed to seed tenant %q: %v", id, err)
		}
	}
	return budget.NewManager(store, nil)
}

func TestRunOnceDeliversAlerts(t *testing.T) {
	store := storage.NewMemoryStore()
	mgr := seedTenants(t, store, "tenant-a", "tenant-b")

	source := &fakeSource{
		alerts: map[string][]budget.Alert{
			"tenant-a": {{
				ID:              "a1",
				Mode:            budget.ModeConsolidated,
				UsagePercentage: 92,
				Month:           "2026-08",
			}},
		},
	}
	sink := &captureSink{}

	s := New(source, mgr, sink, "0 * * * *")
	s.RunOnce(context.Background())

	if len(source.calls) != 2 {
		t.Errorf("evaluated %d tenants, want 2", len(source.calls))
	}
	if len(sink.delivered["tenant-a"]) != 1 {
		t.Errorf("tenant-a received %d alerts, want 1", len(sink.delivered["tenant-a"]))
	}
	if len(sink.delivered["tenant-b"]) != 0 {
		t.Errorf("tenant-b received %d alerts, want 0", len(sink.delivered["tenant-b"]))
	}
}

func TestRunOnceIsolatesTenantFailures(t *testing.T) {
	store := storage.NewMemoryStore()
	mgr := seedTenants(t, store, "broken", "healthy")

	source := &fakeSource{
		errs: map[string]error{"broken": errors.New("collectors unavailable")},
		alerts: map[string][]budget.Alert{
			"healthy": {{ID: "h1", Mode: budget.ModeConsolidated}},
		},
	}
	sink := &captureSink{}

	s := New(source, mgr, sink, "0 * * * *")
	s.RunOnce(context.Background())

	if len(sink.delivered["healthy"]) != 1 {
		t.Errorf("healthy tenant should still be evaluated after another tenant fails, got %d alerts",
			len(sink.delivered["healthy"]))
	}
}

func TestStartRejectsInvalidSpec(t *testing.T) {
	store := storage.NewMemoryStore()
	mgr := seedTenants(t, store)

	s := New(&fakeSource{}, mgr, nil, "not a cron spec")
	if err := s.Start(context.Background()); err == nil {
		t.Error("expected error for invalid cron spec")
	}
}

func TestStartEmptySpecIsNoop(t *testing.T) {
	store := storage.NewMemoryStore()
	mgr := seedTenants(t, store)

	s := New(&fakeSource{}, mgr, nil, "")
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("empty spec should be a no-op, got: %v", err)
	}
	if s.IsRunning() {
		t.Error("scheduler should not run with an empty spec")
	}
}

func TestStartAndStop(t *testing.T) {
	store := storage.NewMemoryStore()
	mgr := seedTenants(t, store, "tenant-a")

	ctx, cancel := context.WithCancel(context.Background())
	s := New(&fakeSource{}, mgr, nil, "0 * * * *")
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !s.IsRunning() {
		t.Error("scheduler should be running after Start")
	}

	cancel()
	deadline := time.Now().Add(2 * time.Second)
	for s.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.IsRunning() {
		t.Error("scheduler should stop when the context is cancelled")
	}
}
