package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"newsdesk/internal/app"
	workerPkg "newsdesk/internal/infra/worker"
	"newsdesk/internal/observability/logging"
	"newsdesk/internal/observability/slo"
	pkgconfig "newsdesk/pkg/config"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.DefaultRegisterer
	a, err := app.New(ctx, logger, app.Options{Component: "worker", Registerer: reg, Tracing: true})
	if err != nil {
		logger.Error("startup failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			logger.Error("cleanup failed", slog.Any("error", err))
		}
	}()

	sweepCfg, warnings := workerPkg.LoadConfigFromEnv(pkgconfig.NewMetrics("sweeper", reg))
	for _, w := range warnings {
		logger.Warn("configuration fallback", slog.String("detail", w))
	}
	logger.Info("sweep configuration loaded",
		slog.String("cron_schedule", sweepCfg.CronSchedule),
		slog.String("timezone", sweepCfg.Timezone),
		slog.Duration("sweep_timeout", sweepCfg.SweepTimeout),
		slog.Int("health_port", sweepCfg.HealthPort))

	healthServer := workerPkg.NewHealthServer(fmt.Sprintf(":%d", sweepCfg.HealthPort), logger, prometheus.DefaultGatherer)
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	sweeper, err := workerPkg.NewSweeper(a.Probes, sweepCfg,
		workerPkg.NewSweepMetrics(reg), slo.NewTracker(slo.DefaultWindow, reg), logger)
	if err != nil {
		logger.Error("failed to schedule sweeps", slog.Any("error", err))
		stop()
		return
	}
	sweeper.Start(ctx)
	healthServer.SetReady(true)

	// First sweep right away so metrics are populated before the first tick.
	sweeper.Sweep(ctx)

	<-ctx.Done()
	logger.Info("shutdown signal received")
	healthServer.SetReady(false)

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	sweeper.Stop(stopCtx)
}
