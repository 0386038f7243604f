// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, route, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds.
	// Health endpoints wait on slow upstreams, so buckets reach past the probe timeout.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "path", "status"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// HTTPRequestsInFlight tracks the number of requests being served
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)
)

// Probe metrics track the health of external dependencies
var (
	// ProbeStatus reports the last status per probe: 1 healthy, 0.5 degraded, 0 unhealthy
	ProbeStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "newsdesk_probe_status",
			Help: "Last observed probe status (1 healthy, 0.5 degraded, 0 unhealthy)",
		},
		[]string{"probe"},
	)

	// ProbeDuration measures how long each probe took
	ProbeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsdesk_probe_duration_seconds",
			Help:    "Time taken to run a single probe",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"probe", "status"},
	)

	// HealthStatus reports the last aggregate status
	HealthStatus = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "newsdesk_health_status",
			Help: "Last aggregate health status (1 healthy, 0.5 degraded, 0 unhealthy)",
		},
	)

	// HealthChecksTotal counts aggregate health runs by resulting status
	HealthChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsdesk_health_checks_total",
			Help: "Total number of aggregate health checks by status",
		},
		[]string{"status"},
	)
)

// Fallback and feed metrics track candidate rotation
var (
	// FallbackAttemptsTotal counts attempts made by the fallback executor
	FallbackAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsdesk_fallback_attempts_total",
			Help: "Total number of fallback attempts by operation and outcome",
		},
		[]string{"operation", "outcome"}, // outcome: success, failure
	)

	// FeedFetchTotal counts feed fetch attempts by result
	FeedFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsdesk_feed_fetch_total",
			Help: "Total number of feed fetch attempts",
		},
		[]string{"result"}, // result: success, blocked, error
	)

	// FeedItemsParsed observes the number of items per successfully parsed feed
	FeedItemsParsed = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newsdesk_feed_items_parsed",
			Help:    "Number of items found in a successfully parsed feed",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
	)

	// ModelTestsTotal counts model fallback test runs by the model that answered
	ModelTestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsdesk_model_tests_total",
			Help: "Total number of model fallback tests by working model",
		},
		[]string{"model"}, // "none" when every model failed
	)
)
