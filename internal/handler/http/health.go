// Package http exposes the probe set, the model tester and the feed fetcher
// over HTTP.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"newsdesk/internal/health"
	"newsdesk/internal/handler/http/respond"
	"newsdesk/internal/observability/logging"
	"newsdesk/internal/resilience/fallback"
	"newsdesk/internal/usecase/ai"
)

// HealthRunner runs the whole probe set or one probe.
type HealthRunner interface {
	Run(ctx context.Context) health.Report
	RunOne(ctx context.Context, name string) (health.ProbeResult, error)
}

// ModelTester finds the first working model.
type ModelTester interface {
	Test(ctx context.Context, models []string) (*ai.ModelTestResult, error)
}

// BreakerReporter exposes per-model circuit breaker states.
type BreakerReporter interface {
	BreakerStates() map[string]string
}

// HealthHandler serves the aggregate and per-probe health endpoints.
type HealthHandler struct {
	Runner   HealthRunner
	Tester   ModelTester
	Breakers BreakerReporter // optional
	Models   []string
	Timeout  time.Duration
}

// ModelsFailure is the 503 body of GET /health/ai/models.
type ModelsFailure struct {
	Error    string                     `json:"error"`
	Models   []string                   `json:"models"`
	Attempts []fallback.Attempt[string] `json:"attempts"`
	Breakers map[string]string          `json:"breakers,omitempty"`
}

// Aggregate runs every probe.
// GET /health
// 200 when healthy or degraded, 503 when unhealthy.
func (h *HealthHandler) Aggregate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.checkContext(r)
	defer cancel()

	report := h.Runner.Run(ctx)
	respond.JSON(w, report.Status.HTTPCode(), report)
}

// Probe runs one probe by name.
// GET /health/{probe}
func (h *HealthHandler) Probe(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "probe")

	ctx, cancel := h.checkContext(r)
	defer cancel()

	res, err := h.Runner.RunOne(ctx, name)
	if errors.Is(err, health.ErrUnknownProbe) {
		respond.Error(w, http.StatusNotFound, "unknown probe: "+name)
		return
	}
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, res.Status.HTTPCode(), res)
}

// Models runs the model fallback tester over the configured models.
// GET /health/ai/models
// 200 with the working model, 503 with every attempt when none works.
func (h *HealthHandler) Models(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.checkContext(r)
	defer cancel()

	if h.Tester == nil {
		respond.Error(w, http.StatusServiceUnavailable, "ai provider not configured")
		return
	}

	res, err := h.Tester.Test(ctx, h.Models)
	if err != nil {
		body := ModelsFailure{Error: err.Error(), Models: h.Models, Attempts: []fallback.Attempt[string]{}}
		var exhausted *fallback.ExhaustedError[string]
		if errors.As(err, &exhausted) {
			body.Attempts = exhausted.Attempts
		}
		if h.Breakers != nil {
			body.Breakers = h.Breakers.BreakerStates()
		}
		logging.FromContext(ctx).WarnContext(ctx, "model fallback test failed", "error", err)
		respond.JSON(w, http.StatusServiceUnavailable, body)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

func (h *HealthHandler) checkContext(r *http.Request) (context.Context, context.CancelFunc) {
	return detachedContext(r, h.Timeout)
}

// detachedContext detaches work from the client connection so a disconnect
// does not abort checks midway, and bounds it by timeout when positive.
func detachedContext(r *http.Request, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx := context.WithoutCancel(r.Context())
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

// Readiness reports whether the document store answers.
type Readiness interface {
	Ping(ctx context.Context) error
	State() string
}

// ReadyHandler serves /ready and /live.
type ReadyHandler struct {
	Store   Readiness
	Timeout time.Duration
}

// Ready pings the store.
// GET /ready
func (h *ReadyHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "database": "not configured"})
		return
	}
	ctx := r.Context()
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}
	if err := h.Store.Ping(ctx); err != nil {
		respond.JSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "not ready",
			"database": h.Store.State(),
			"error":    respond.SanitizeError(err),
		})
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ready", "database": h.Store.State()})
}

// Live always answers 200 while the process serves requests.
// GET /live
func (h *ReadyHandler) Live(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{"status": "alive"})
}
