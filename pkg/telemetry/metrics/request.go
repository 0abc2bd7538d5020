package metrics

import (
	"strconv"
	"time"

	"costwise-hq/atlas/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks HTTP API requests.
//
// Metrics:
//   - atlas_costs_http_requests_total: Requests by method, path, and status
//   - atlas_costs_http_request_duration_seconds: Request duration (histogram)
//   - atlas_costs_http_requests_in_flight: Currently executing requests
type RequestMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
}

// NewRequestMetrics creates and registers HTTP request metrics with the
// provided registry.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, path, and status code",
			},
			[]string{"method", "path", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   cfg.FetchDurationBuckets,
			},
			[]string{"method", "path"},
		),

		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "http_requests_in_flight",
				Help:      "HTTP requests currently being served",
			},
		),
	}

	registry.MustRegister(
		rm.requestsTotal,
		rm.requestDuration,
		rm.inFlight,
	)

	return rm
}

// RecordRequest records one completed HTTP request.
func (rm *RequestMetrics) RecordRequest(method, path string, status int, duration time.Duration) {
	rm.requestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	rm.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RequestStarted marks a request as in flight. The caller must pair it
// with RequestFinished.
func (rm *RequestMetrics) RequestStarted() { rm.inFlight.Inc() }

// RequestFinished marks an in-flight request as done.
func (rm *RequestMetrics) RequestFinished() { rm.inFlight.Dec() }
