package config

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks configuration loads for one component.
//
//	newsdesk_config_load_timestamp{component}
//	newsdesk_config_fallbacks_total{component,field}
//	newsdesk_config_fallback_active{component}
type Metrics struct {
	component string

	loadTimestamp  *prometheus.GaugeVec
	fallbacksTotal *prometheus.CounterVec
	fallbackActive *prometheus.GaugeVec
}

// NewMetrics registers the configuration metrics on reg. Registering twice on
// the same registry panics, so processes create one Metrics per component.
func NewMetrics(component string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		component: component,
		loadTimestamp: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "newsdesk",
			Subsystem: "config",
			Name:      "load_timestamp",
			Help:      "Unix timestamp of the last configuration load.",
		}, []string{"component"}),
		fallbacksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "newsdesk",
			Subsystem: "config",
			Name:      "fallbacks_total",
			Help:      "Configuration values replaced by their default after failing validation.",
		}, []string{"component", "field"}),
		fallbackActive: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "newsdesk",
			Subsystem: "config",
			Name:      "fallback_active",
			Help:      "1 if the last load applied any fallback, 0 otherwise.",
		}, []string{"component"}),
	}
}

// RecordLoad stamps the load time and whether any fallback was applied.
func (m *Metrics) RecordLoad(fallbackActive bool) {
	if m == nil {
		return
	}
	m.loadTimestamp.WithLabelValues(m.component).SetToCurrentTime()
	v := 0.0
	if fallbackActive {
		v = 1
	}
	m.fallbackActive.WithLabelValues(m.component).Set(v)
}

// RecordFallback counts one fallback for field.
func (m *Metrics) RecordFallback(field string) {
	if m == nil {
		return
	}
	m.fallbacksTotal.WithLabelValues(m.component, field).Inc()
}
