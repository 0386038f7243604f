package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"newsdesk/internal/handler/http/requestid"
	"newsdesk/internal/observability/tracing"
)

// RouterDeps is what NewRouter wires into handlers.
type RouterDeps struct {
	Logger  *slog.Logger
	Health  *HealthHandler
	Feeds   *FeedHandler
	Ready   *ReadyHandler
	Limiter *rate.Limiter // shared by /health routes and /feeds/preview
}

// NewRouter builds the API routes. Middleware order: request ID, recover,
// logging, metrics, tracing.
func NewRouter(d RouterDeps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(Recover(logger))
	r.Use(Logging(logger))
	r.Use(MetricsMiddleware)
	r.Use(tracing.Middleware)

	r.Get("/live", d.Ready.Live)
	r.Get("/ready", d.Ready.Ready)
	r.Method(http.MethodGet, "/metrics", MetricsHandler())

	r.Group(func(r chi.Router) {
		r.Use(RateLimit(d.Limiter))
		r.Get("/health", d.Health.Aggregate)
		r.Get("/health/ai/models", d.Health.Models)
		r.Get("/health/{probe}", d.Health.Probe)
		if d.Feeds != nil {
			r.Get("/feeds/preview", d.Feeds.Preview)
		}
	})

	return r
}
