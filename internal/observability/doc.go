// Package observability groups logging, metrics, tracing and SLO tracking.
//
// Subpackages:
//   - logging: slog construction and request-scoped loggers
//   - metrics: Prometheus collectors for HTTP, probes, fallbacks and feeds
//   - tracing: OpenTelemetry provider and HTTP middleware
//   - slo: rolling probe availability against a target
//
// Example usage:
//
//	import (
//	    "newsdesk/internal/observability/logging"
//	    "newsdesk/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("application started")
//
//	    metrics.RecordHealthCheck("healthy", 1)
//	}
package observability
