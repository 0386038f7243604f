// Package logging provides structured logging utilities with context propagation.
//
// Key features:
//   - JSON (default) and text output selected by LOG_FORMAT
//   - Level selected by LOG_LEVEL
//   - Request ID propagation
//
// Example usage:
//
//	logger := logging.NewLogger()
//	slog.SetDefault(logger)
//
//	func handle(ctx context.Context) {
//	    logging.WithRequestID(ctx, slog.Default()).Info("running probes")
//	}
package logging
