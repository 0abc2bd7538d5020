// Package telemetry groups the observability subsystems for Atlas:
// structured logging (telemetry/logging), Prometheus metrics
// (telemetry/metrics), and health probes (telemetry/health).
package telemetry
