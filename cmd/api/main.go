package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"newsdesk/internal/app"
	"newsdesk/internal/domain/entity"
	hhttp "newsdesk/internal/handler/http"
	"newsdesk/internal/observability/logging"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, logger, app.Options{
		Component:  "api",
		Registerer: prometheus.DefaultRegisterer,
		Tracing:    true,
	})
	if err != nil {
		logger.Error("startup failed", slog.Any("error", err))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              a.Config.HTTPAddr,
		Handler:           newHandler(a),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Aggregate checks may take up to the request timeout.
		WriteTimeout: a.Config.Health.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	runServer(ctx, logger, srv)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Close(shutdownCtx); err != nil {
		logger.Error("cleanup failed", slog.Any("error", err))
	}
}

func newHandler(a *app.App) http.Handler {
	cfg := a.Config
	health := &hhttp.HealthHandler{
		Runner:  a.Probes,
		Models:  cfg.AI.Models,
		Timeout: cfg.Health.RequestTimeout,
	}
	if a.Tester != nil {
		health.Tester = a.Tester
	}
	if br, ok := a.Generator.(hhttp.BreakerReporter); ok {
		health.Breakers = br
	}

	ready := &hhttp.ReadyHandler{Timeout: cfg.DB.PingTimeout}
	if a.Store != nil {
		ready.Store = a.Store
	}

	return hhttp.NewRouter(hhttp.RouterDeps{
		Logger: a.Logger,
		Health: health,
		Feeds: &hhttp.FeedHandler{
			Fetcher:     a.Previewer,
			ValidateURL: entity.ValidateURL,
			Timeout:     cfg.Health.RequestTimeout,
		},
		Ready:   ready,
		Limiter: rate.NewLimiter(rate.Limit(cfg.Health.RateLimit), cfg.Health.RateBurst),
	})
}

// runServer blocks until ctx is cancelled or the listener fails, then drains
// in-flight requests.
func runServer(ctx context.Context, logger *slog.Logger, srv *http.Server) {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
		}
		return
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		return
	}
	logger.Info("api server stopped")
}
