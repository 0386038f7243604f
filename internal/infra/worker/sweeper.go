package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/robfig/cron/v3"

	"newsdesk/internal/health"
	"newsdesk/internal/observability/slo"
)

// Runner runs every registered probe once.
type Runner interface {
	Run(ctx context.Context) health.Report
}

// Sweeper runs the probe set on a cron schedule. Overlapping runs are skipped
// and a panicking sweep is recovered.
type Sweeper struct {
	runner  Runner
	cfg     SweepConfig
	metrics *SweepMetrics
	slo     *slo.Tracker
	logger  *slog.Logger

	cron    *cron.Cron
	baseCtx context.Context
}

// NewSweeper validates the schedule and registers the sweep job. metrics and
// tracker may be nil.
func NewSweeper(runner Runner, cfg SweepConfig, metrics *SweepMetrics, tracker *slo.Tracker, logger *slog.Logger) (*Sweeper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sweep config: %w", err)
	}

	cl := cronLogger{logger: logger}
	s := &Sweeper{
		runner:  runner,
		cfg:     cfg,
		metrics: metrics,
		slo:     tracker,
		logger:  logger,
		baseCtx: context.Background(),
		cron: cron.New(
			cron.WithLocation(cfg.Location()),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
	}
	if _, err := s.cron.AddFunc(cfg.CronSchedule, func() { s.Sweep(s.baseCtx) }); err != nil {
		return nil, fmt.Errorf("add sweep job: %w", err)
	}
	return s, nil
}

// Start begins scheduling. Sweeps derive their context from ctx.
func (s *Sweeper) Start(ctx context.Context) {
	s.baseCtx = ctx
	s.cron.Start()
	s.logger.Info("sweeper started",
		slog.String("schedule", s.cfg.CronSchedule),
		slog.String("timezone", s.cfg.Timezone),
		slog.Time("next", s.Next()))
}

// Stop halts scheduling and waits for a running sweep until ctx expires.
func (s *Sweeper) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("sweeper stopped")
	case <-ctx.Done():
		s.logger.Warn("sweeper stop timed out with a sweep in flight")
	}
}

// Next returns the next scheduled run, or the zero time before Start.
func (s *Sweeper) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Sweep runs the probes once, bounded by SweepTimeout, and records the outcome.
func (s *Sweeper) Sweep(ctx context.Context) health.Report {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.SweepTimeout)
	defer cancel()

	start := time.Now()
	report := s.runner.Run(ctx)
	elapsed := time.Since(start)
	s.metrics.RecordSweep(report, elapsed)
	s.slo.Observe(report)

	attrs := []any{
		slog.String("status", string(report.Status)),
		slog.String("summary", report.Summary),
		slog.Duration("elapsed", elapsed),
	}
	if failing := failingProbes(report); len(failing) > 0 {
		attrs = append(attrs, slog.Any("failing", failing))
	}

	switch report.Status {
	case health.StatusHealthy:
		s.logger.Info("sweep completed", attrs...)
	case health.StatusDegraded:
		s.logger.Warn("sweep completed", attrs...)
	default:
		s.logger.Error("sweep completed", attrs...)
	}
	return report
}

func failingProbes(report health.Report) []string {
	var names []string
	for name, r := range report.Probes {
		if r.Status != health.StatusHealthy {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// cronLogger routes cron's internal logging to slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, slog.Any("error", err))...)
}
