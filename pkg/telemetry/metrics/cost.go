package metrics

import (
	"costwise-hq/atlas/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// CostMetrics tracks aggregated spend and budget alerts.
//
// Metrics:
//   - atlas_costs_provider_cost: Latest aggregated cost by provider (display currency)
//   - atlas_costs_total_cost: Latest aggregated total across providers
//   - atlas_costs_budget_alerts_total: Budget threshold alerts emitted, by mode
type CostMetrics struct {
	providerCost *prometheus.GaugeVec
	totalCost    *prometheus.GaugeVec
	alertsTotal  *prometheus.CounterVec
}

// NewCostMetrics creates and registers cost metrics with the provided registry.
func NewCostMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CostMetrics {
	cm := &CostMetrics{
		providerCost: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "provider_cost",
				Help:      "Latest aggregated cost per provider in the display currency",
			},
			[]string{"provider", "currency"},
		),

		totalCost: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "total_cost",
				Help:      "Latest aggregated cost across all providers in the display currency",
			},
			[]string{"currency"},
		),

		alertsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "budget_alerts_total",
				Help:      "Budget threshold alerts emitted, by budget mode",
			},
			[]string{"mode"},
		),
	}

	registry.MustRegister(
		cm.providerCost,
		cm.totalCost,
		cm.alertsTotal,
	)

	return cm
}

// RecordAggregation publishes the latest aggregation pass. Gauges hold
// the most recent value; scrapes between passes see the last computed
// snapshot.
func (cm *CostMetrics) RecordAggregation(currency string, total float64, byProvider map[string]float64) {
	cm.totalCost.WithLabelValues(currency).Set(total)
	for provider, amount := range byProvider {
		cm.providerCost.WithLabelValues(provider, currency).Set(amount)
	}
}

// RecordAlerts counts emitted budget alerts.
func (cm *CostMetrics) RecordAlerts(mode string, count int) {
	if count <= 0 {
		return
	}
	cm.alertsTotal.WithLabelValues(mode).Add(float64(count))
}
