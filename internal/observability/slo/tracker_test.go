package slo

import (
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	io_prometheus_client "github.com/prometheus/client_model/go"

	"newsdesk/internal/health"
)

func sweep(status health.Status, probes map[string]health.Status) health.Report {
	results := make(map[string]health.ProbeResult, len(probes))
	for name, s := range probes {
		results[name] = health.ProbeResult{Name: name, Status: s}
	}
	return health.Report{Status: status, Probes: results}
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	m := &io_prometheus_client.Metric{}
	if err := g.Write(m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestTracker_Observe(t *testing.T) {
	tr := NewTracker(4, prometheus.NewRegistry())

	tr.Observe(sweep(health.StatusHealthy, map[string]health.Status{"rss": health.StatusHealthy, "ai": health.StatusHealthy}))
	tr.Observe(sweep(health.StatusDegraded, map[string]health.Status{"rss": health.StatusDegraded, "ai": health.StatusHealthy}))
	tr.Observe(sweep(health.StatusUnhealthy, map[string]health.Status{"rss": health.StatusUnhealthy, "ai": health.StatusUnhealthy}))
	tr.Observe(sweep(health.StatusHealthy, map[string]health.Status{"rss": health.StatusHealthy, "ai": health.StatusHealthy}))

	rss, ok := tr.Availability("rss")
	if !ok || rss != 0.5 {
		t.Errorf("rss availability = %v (seen %v), want 0.5", rss, ok)
	}
	ai, _ := tr.Availability("ai")
	if ai != 0.75 {
		t.Errorf("ai availability = %v, want 0.75", ai)
	}
	if _, ok := tr.Availability("cloud"); ok {
		t.Error("unseen probe reported as seen")
	}

	if got := gaugeValue(t, tr.availability); got != 0.75 {
		t.Errorf("aggregate availability = %v, want 0.75", got)
	}
	if got := gaugeValue(t, tr.probeAvailability.WithLabelValues("rss")); got != 0.5 {
		t.Errorf("rss gauge = %v, want 0.5", got)
	}
}

func TestTracker_WindowSlides(t *testing.T) {
	tr := NewTracker(3, prometheus.NewRegistry())
	down := map[string]health.Status{"database": health.StatusUnhealthy}
	up := map[string]health.Status{"database": health.StatusHealthy}

	tr.Observe(sweep(health.StatusUnhealthy, down))
	tr.Observe(sweep(health.StatusUnhealthy, down))
	for i := 0; i < 3; i++ {
		tr.Observe(sweep(health.StatusHealthy, up))
	}

	if got, _ := tr.Availability("database"); got != 1 {
		t.Errorf("old failures should have left the window, availability = %v", got)
	}
	if got := gaugeValue(t, tr.errorBudget); got != 1 {
		t.Errorf("error budget = %v, want 1", got)
	}
}

func TestTracker_NilSafe(t *testing.T) {
	var tr *Tracker
	tr.Observe(sweep(health.StatusHealthy, nil))
}

func TestErrorBudgetRemaining(t *testing.T) {
	tests := []struct {
		avail, target, want float64
	}{
		{1, 0.99, 1},
		{0.995, 0.99, 0.5},
		{0.99, 0.99, 0},
		{0.98, 0.99, -1},
		{1, 1, 1},
		{0.5, 1, 0},
	}
	for _, tt := range tests {
		got := ErrorBudgetRemaining(tt.avail, tt.target)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ErrorBudgetRemaining(%v, %v) = %v, want %v", tt.avail, tt.target, got, tt.want)
		}
	}
}
