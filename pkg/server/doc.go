// Package server provides the HTTP API for aggregated cloud costs and
// budget management.
//
// This package ties together the orchestrator, budget manager, health
// checker, and metrics collector behind one http.Server and manages the
// server lifecycle including start, graceful shutdown, and OS signals
// (SIGTERM, SIGINT).
//
// # Basic Usage
//
// Creating and starting a server:
//
//	import (
//	    "context"
//	    "costwise-hq/atlas/pkg/config"
//	    "costwise-hq/atlas/pkg/server"
//	)
//
//	cfg := config.GetConfig()
//
//	srv := server.NewServer(&cfg.Server, server.Options{
//	    Orchestrator: orch,
//	    Budgets:      budgets,
//	    Checker:      checker,
//	})
//	if err := srv.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// Start blocks until the context is canceled, a termination signal
// arrives, or the listener fails, then shuts down gracefully within the
// configured shutdown timeout.
//
// # Routes
//
//   - GET /v1/costs - aggregated costs for a date window, with an
//     optional display currency override and previous-period deltas
//   - GET /v1/budget/usage - derived budget usage for the tenant
//   - GET, PUT /v1/budget/settings - tenant budget policy
//   - GET /v1/budget/alerts - on-demand threshold evaluation
//   - GET /health - liveness probe (always returns 200)
//   - GET /ready - readiness probe (runs registered checks)
//   - GET /metrics - Prometheus exposition (when metrics are enabled)
//
// Budget routes select their tenant with the X-Tenant-ID header and
// fall back to the "default" tenant without it.
//
// # Middleware Chain
//
// Requests pass through the following middleware (innermost to
// outermost):
//  1. Metrics: records request counts, latency, and in-flight gauge
//  2. Logging: logs request/response details
//  3. RequestID: generates or propagates X-Request-ID
//  4. Recovery: recovers from panics and returns 500
//
// # Thread Safety
//
// All server operations are thread-safe and can be called concurrently
// from multiple goroutines.
package server
