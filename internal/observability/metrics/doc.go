// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - HTTP request metrics (duration, count, size)
//   - Probe and aggregate health status
//   - Fallback executor attempts and feed fetch results
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "newsdesk/internal/observability/metrics"
//
//	func checkDatabase(ctx context.Context) {
//	    start := time.Now()
//	    // ... ping ...
//	    metrics.RecordProbe("database", "healthy", 1, time.Since(start))
//	}
package metrics
