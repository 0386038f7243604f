// Package slo tracks how often each probe has been healthy over the most
// recent sweeps and exports it against an availability target.
package slo

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"newsdesk/internal/health"
)

const (
	// AvailabilityTarget is the share of sweeps each dependency should pass.
	AvailabilityTarget = 0.99

	// DefaultWindow is the number of sweeps considered (one day at */5).
	DefaultWindow = 288
)

// Tracker keeps a sliding window of sweep outcomes.
//
// Exported gauges:
//   - newsdesk_slo_probe_availability_ratio{probe}: healthy share per probe
//   - newsdesk_slo_availability_ratio: share of sweeps that were not unhealthy
//   - newsdesk_slo_error_budget_remaining_ratio: 1 when no budget is spent, 0 or less when exhausted
type Tracker struct {
	window int

	mu        sync.Mutex
	probes    map[string]*ring
	aggregate *ring

	probeAvailability *prometheus.GaugeVec
	availability      prometheus.Gauge
	errorBudget       prometheus.Gauge
}

// NewTracker registers the SLO gauges on reg. window <= 0 uses DefaultWindow.
func NewTracker(window int, reg prometheus.Registerer) *Tracker {
	if window <= 0 {
		window = DefaultWindow
	}
	f := promauto.With(reg)
	return &Tracker{
		window:    window,
		probes:    make(map[string]*ring),
		aggregate: newRing(window),
		probeAvailability: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "newsdesk",
			Subsystem: "slo",
			Name:      "probe_availability_ratio",
			Help:      "Share of recent sweeps in which the probe was healthy.",
		}, []string{"probe"}),
		availability: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "newsdesk",
			Subsystem: "slo",
			Name:      "availability_ratio",
			Help:      "Share of recent sweeps whose aggregate status was not unhealthy, target 0.99.",
		}),
		errorBudget: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "newsdesk",
			Subsystem: "slo",
			Name:      "error_budget_remaining_ratio",
			Help:      "Remaining share of the availability error budget.",
		}),
	}
}

// Observe adds one sweep. Safe on a nil receiver.
func (t *Tracker) Observe(report health.Report) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	for name, res := range report.Probes {
		r, ok := t.probes[name]
		if !ok {
			r = newRing(t.window)
			t.probes[name] = r
		}
		r.add(res.Status == health.StatusHealthy)
		t.probeAvailability.WithLabelValues(name).Set(r.ratio())
	}

	t.aggregate.add(report.Status != health.StatusUnhealthy)
	avail := t.aggregate.ratio()
	t.availability.Set(avail)
	t.errorBudget.Set(ErrorBudgetRemaining(avail, AvailabilityTarget))
}

// Availability returns the healthy share for probe and whether it has been seen.
func (t *Tracker) Availability(probe string) (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.probes[probe]
	if !ok {
		return 0, false
	}
	return r.ratio(), true
}

// ErrorBudgetRemaining is 1 - (1-availability)/(1-target). It goes negative
// once the budget is overspent.
func ErrorBudgetRemaining(availability, target float64) float64 {
	if target >= 1 {
		if availability >= 1 {
			return 1
		}
		return 0
	}
	return 1 - (1-availability)/(1-target)
}

// ring is a fixed-size window of pass/fail samples.
type ring struct {
	samples []bool
	next    int
	full    bool
	passed  int
}

func newRing(size int) *ring {
	return &ring{samples: make([]bool, size)}
}

func (r *ring) add(ok bool) {
	if r.full && r.samples[r.next] {
		r.passed--
	}
	r.samples[r.next] = ok
	if ok {
		r.passed++
	}
	r.next++
	if r.next == len(r.samples) {
		r.next = 0
		r.full = true
	}
}

func (r *ring) len() int {
	if r.full {
		return len(r.samples)
	}
	return r.next
}

func (r *ring) ratio() float64 {
	n := r.len()
	if n == 0 {
		return 0
	}
	return float64(r.passed) / float64(n)
}
