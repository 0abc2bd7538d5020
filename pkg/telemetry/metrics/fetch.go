package metrics

import (
	"strconv"
	"time"

	"costwise-hq/atlas/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// FetchMetrics tracks provider billing API calls.
//
// Metrics:
//   - atlas_costs_fetch_duration_seconds: Collector call duration by provider (histogram)
//   - atlas_costs_fetch_total: Collector calls by provider and outcome
//   - atlas_costs_fetch_failures_total: Failed calls by provider and transience
type FetchMetrics struct {
	fetchDuration *prometheus.HistogramVec
	fetchTotal    *prometheus.CounterVec
	fetchFailures *prometheus.CounterVec
}

// NewFetchMetrics creates and registers fetch metrics with the provided registry.
func NewFetchMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *FetchMetrics {
	fm := &FetchMetrics{
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "fetch_duration_seconds",
				Help:      "Provider billing API call duration in seconds",
				Buckets:   cfg.FetchDurationBuckets,
			},
			[]string{"provider"},
		),

		fetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "fetch_total",
				Help:      "Provider billing API calls by outcome",
			},
			[]string{"provider", "success"},
		),

		fetchFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "fetch_failures_total",
				Help:      "Failed provider billing API calls by transience",
			},
			[]string{"provider", "transient"},
		),
	}

	registry.MustRegister(
		fm.fetchDuration,
		fm.fetchTotal,
		fm.fetchFailures,
	)

	return fm
}

// RecordFetch records one collector call.
func (fm *FetchMetrics) RecordFetch(provider string, duration time.Duration, success bool) {
	fm.fetchDuration.WithLabelValues(provider).Observe(duration.Seconds())
	fm.fetchTotal.WithLabelValues(provider, strconv.FormatBool(success)).Inc()
}

// RecordFailure records one failed collector call. Transient failures
// (throttling, timeouts) are expected to resolve on retry; terminal ones
// (revoked credentials, deactivated accounts) are not.
func (fm *FetchMetrics) RecordFailure(provider string, transient bool) {
	fm.fetchFailures.WithLabelValues(provider, strconv.FormatBool(transient)).Inc()
}
