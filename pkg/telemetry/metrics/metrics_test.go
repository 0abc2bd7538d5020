package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"costwise-hq/atlas/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestCollector() *Collector {
	return NewCollector(&config.MetricsConfig{}, prometheus.NewRegistry())
}

func TestFetchMetrics(t *testing.T) {
	c := newTestCollector()

	c.Fetch().RecordFetch("AWS", 250*time.Millisecond, true)
	c.Fetch().RecordFetch("NCP", 100*time.Millisecond, false)
	c.Fetch().RecordFailure("NCP", true)
	c.Fetch().RecordFailure("NCP", true)
	c.Fetch().RecordFailure("AZURE", false)

	if got := testutil.ToFloat64(c.Fetch().fetchTotal.WithLabelValues("AWS", "true")); got != 1 {
		t.Errorf("AWS success count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.Fetch().fetchFailures.WithLabelValues("NCP", "true")); got != 2 {
		t.Errorf("NCP transient failure count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.Fetch().fetchFailures.WithLabelValues("AZURE", "false")); got != 1 {
		t.Errorf("AZURE terminal failure count = %v, want 1", got)
	}
}

func TestCostMetricsGaugesHoldLatest(t *testing.T) {
	c := newTestCollector()

	c.Cost().RecordAggregation("USD", 1000, map[string]float64{"AWS": 700, "GCP": 300})
	c.Cost().RecordAggregation("USD", 1200, map[string]float64{"AWS": 900, "GCP": 300})

	if got := testutil.ToFloat64(c.Cost().totalCost.WithLabelValues("USD")); got != 1200 {
		t.Errorf("total cost gauge = %v, want latest 1200", got)
	}
	if got := testutil.ToFloat64(c.Cost().providerCost.WithLabelValues("AWS", "USD")); got != 900 {
		t.Errorf("AWS cost gauge = %v, want latest 900", got)
	}
}

func TestCostMetricsAlertCounter(t *testing.T) {
	c := newTestCollector()

	c.Cost().RecordAlerts("CONSOLIDATED", 1)
	c.Cost().RecordAlerts("CONSOLIDATED", 2)
	c.Cost().RecordAlerts("ACCOUNT_SPECIFIC", 0)

	if got := testutil.ToFloat64(c.Cost().alertsTotal.WithLabelValues("CONSOLIDATED")); got != 3 {
		t.Errorf("consolidated alert count = %v, want 3", got)
	}
	if got := testutil.ToFloat64(c.Cost().alertsTotal.WithLabelValues("ACCOUNT_SPECIFIC")); got != 0 {
		t.Errorf("account-specific alert count = %v, want 0", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := newTestCollector()
	c.Fetch().RecordFetch("AWS", 100*time.Millisecond, true)
	c.Request().RecordRequest("GET", "/v1/costs", 200, 50*time.Millisecond)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("metrics endpoint returned %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"atlas_costs_fetch_total", "atlas_costs_http_requests_total"} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %s", want)
		}
	}
}
