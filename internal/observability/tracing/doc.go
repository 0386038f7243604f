// Package tracing provides OpenTelemetry tracing integration.
//
// InitProvider installs the SDK tracer provider at process start, Middleware
// opens one server span per HTTP request, and GetTracer is used by the probe
// set to open one child span per probe.
//
// Example usage:
//
//	shutdown := tracing.InitProvider("newsdesk-api", version, 0.1)
//	defer func() { _ = shutdown(context.Background()) }()
//
//	ctx, span := tracing.GetTracer().Start(ctx, "probe.rss")
//	defer span.End()
package tracing
