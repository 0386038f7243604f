package worker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"newsdesk/internal/health"
)

// SweepMetrics tracks scheduled sweeps:
//   - newsdesk_worker_sweeps_total{status}: sweeps by aggregate status
//   - newsdesk_worker_sweep_duration_seconds: wall-clock time per sweep
//   - newsdesk_worker_last_sweep_timestamp{status}: when each status was last seen
//   - newsdesk_worker_healthy_probes: healthy probe count from the latest sweep
type SweepMetrics struct {
	SweepsTotal   *prometheus.CounterVec
	SweepDuration prometheus.Histogram
	LastSweep     *prometheus.GaugeVec
	HealthyProbes prometheus.Gauge
}

// NewSweepMetrics registers the sweep metrics on reg.
func NewSweepMetrics(reg prometheus.Registerer) *SweepMetrics {
	f := promauto.With(reg)
	return &SweepMetrics{
		SweepsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "newsdesk",
			Subsystem: "worker",
			Name:      "sweeps_total",
			Help:      "Scheduled health sweeps by aggregate status.",
		}, []string{"status"}),
		SweepDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "newsdesk",
			Subsystem: "worker",
			Name:      "sweep_duration_seconds",
			Help:      "Wall-clock duration of a scheduled health sweep.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		LastSweep: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "newsdesk",
			Subsystem: "worker",
			Name:      "last_sweep_timestamp",
			Help:      "Unix time of the last sweep that ended with the given status.",
		}, []string{"status"}),
		HealthyProbes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "newsdesk",
			Subsystem: "worker",
			Name:      "healthy_probes",
			Help:      "Healthy probes in the most recent sweep.",
		}),
	}
}

// RecordSweep records one finished sweep. Safe on a nil receiver.
func (m *SweepMetrics) RecordSweep(report health.Report, elapsed time.Duration) {
	if m == nil {
		return
	}
	status := string(report.Status)
	m.SweepsTotal.WithLabelValues(status).Inc()
	m.SweepDuration.Observe(elapsed.Seconds())
	m.LastSweep.WithLabelValues(status).SetToCurrentTime()
	m.HealthyProbes.Set(float64(report.Healthy))
}
