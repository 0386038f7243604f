package metrics

import (
	"time"
)

// RecordHTTPRequest records an HTTP request with its metadata.
func RecordHTTPRequest(method, path, status string, duration time.Duration, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

// RecordProbe records the outcome of a single probe run.
// score is the numeric form of the status (1 healthy, 0.5 degraded, 0 unhealthy).
func RecordProbe(probe, status string, score float64, duration time.Duration) {
	ProbeStatus.WithLabelValues(probe).Set(score)
	ProbeDuration.WithLabelValues(probe, status).Observe(duration.Seconds())
}

// RecordHealthCheck records the outcome of an aggregate health run.
func RecordHealthCheck(status string, score float64) {
	HealthStatus.Set(score)
	HealthChecksTotal.WithLabelValues(status).Inc()
}

// RecordFallbackAttempt records one fallback executor attempt.
func RecordFallbackAttempt(operation, outcome string) {
	FallbackAttemptsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordFeedFetch records one feed fetch attempt.
// Result should be one of "success", "blocked", or "error".
func RecordFeedFetch(result string) {
	FeedFetchTotal.WithLabelValues(result).Inc()
}

// RecordFeedParsed records the number of items found in a parsed feed.
func RecordFeedParsed(items int) {
	FeedItemsParsed.Observe(float64(items))
}

// RecordModelTest records which model answered a fallback test.
// An empty model name records a run where no model answered.
func RecordModelTest(model string) {
	if model == "" {
		model = "none"
	}
	ModelTestsTotal.WithLabelValues(model).Inc()
}
