// Package scheduler runs periodic budget alert sweeps. On each tick it
// evaluates every tenant with stored settings against live spend and
// delivers any triggered alerts to the configured sink.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"costwise-hq/atlas/pkg/budget"
)

// AlertSource evaluates one tenant's budget thresholds against live
// spend. The orchestrator implements it.
type AlertSource interface {
	CheckBudgetAlerts(ctx context.Context, tenantID string) ([]budget.Alert, error)
}

// Scheduler evaluates budget thresholds for every known tenant on a
// cron schedule.
type Scheduler struct {
	source   AlertSource
	manager  *budget.Manager
	sink     budget.Sink
	cronSpec string

	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
}

// New creates an alert scheduler. If cronSpec is empty, Start is a
// no-op.
func New(source AlertSource, manager *budget.Manager, sink budget.Sink, cronSpec string) *Scheduler {
	if sink == nil {
		sink = &budget.LogSink{}
	}
	return &Scheduler{
		source:   source,
		manager:  manager,
		sink:     sink,
		cronSpec: cronSpec,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "scheduler"),
	}
}

// Start begins scheduled alert evaluation.
//
// Common cron expressions:
//   - "0 * * * *"    - Hourly
//   - "*/30 * * * *" - Every 30 minutes
//   - "0 9 * * *"    - Daily at 9 AM
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cronSpec == "" {
		s.logger.Info("alert schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.cronSpec); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.cronSpec, err)
	}

	_, err := s.cron.AddFunc(s.cronSpec, func() {
		s.runSweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule alert sweep: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("alert scheduler started", "schedule", s.cronSpec)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runSweep evaluates every known tenant. One tenant's failure never
// blocks the rest of the sweep.
func (s *Scheduler) runSweep(ctx context.Context) {
	s.logger.Debug("starting scheduled alert sweep")

	tenants, err := s.manager.Tenants(ctx)
	if err != nil {
		s.logger.Error("failed to list tenants for alert sweep", "error", err)
		return
	}

	var triggered int
	for _, tenantID := range tenants {
		alerts, err := s.source.CheckBudgetAlerts(ctx, tenantID)
		if err != nil {
			s.logger.Error("alert evaluation failed",
				"tenant", tenantID,
				"error", err,
			)
			continue
		}
		if len(alerts) == 0 {
			continue
		}

		triggered += len(alerts)
		if err := s.sink.Deliver(ctx, tenantID, alerts); err != nil {
			s.logger.Error("alert delivery failed",
				"tenant", tenantID,
				"alerts", len(alerts),
				"error", err,
			)
		}
	}

	if triggered > 0 {
		s.logger.Info("alert sweep completed",
			"tenants", len(tenants),
			"alerts", triggered,
		)
	} else {
		s.logger.Debug("alert sweep completed, no thresholds reached",
			"tenants", len(tenants),
		)
	}
}

// RunOnce executes one sweep immediately, outside the schedule. Used by
// the CLI check command.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.runSweep(ctx)
}

// Stop stops the scheduler and waits for any running sweep to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.logger.Info("alert scheduler stopped")
	}
}

// IsRunning reports whether the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
