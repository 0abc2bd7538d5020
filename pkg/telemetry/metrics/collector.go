// Package metrics provides Prometheus metrics for Atlas.
//
// The Collector owns a private registry and the metric subsystems:
// collector fetch metrics, aggregated cost gauges, budget alert
// counters, and HTTP request metrics. All metric names share the
// configured namespace and subsystem (atlas_costs_* by default).
package metrics

import (
	"costwise-hq/atlas/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the root of all Prometheus metrics in Atlas. It manages
// registration and hands out recording interfaces for each subsystem.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	fetchMetrics   *FetchMetrics
	costMetrics    *CostMetrics
	requestMetrics *RequestMetrics
}

// NewCollector creates a metrics collector with the specified
// configuration and Prometheus registry. If registry is nil, a fresh
// private registry is used.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.FetchDurationBuckets) == 0 {
		cfg.FetchDurationBuckets = config.DefaultFetchDurationBuckets()
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}
	c.fetchMetrics = NewFetchMetrics(cfg, registry)
	c.costMetrics = NewCostMetrics(cfg, registry)
	c.requestMetrics = NewRequestMetrics(cfg, registry)
	return c
}

// Fetch returns the collector fetch metrics.
func (c *Collector) Fetch() *FetchMetrics { return c.fetchMetrics }

// Cost returns the aggregated cost metrics.
func (c *Collector) Cost() *CostMetrics { return c.costMetrics }

// Request returns the HTTP request metrics.
func (c *Collector) Request() *RequestMetrics { return c.requestMetrics }

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }
