package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdesk/internal/health"
	"newsdesk/internal/observability/slo"
)

type fakeRunner struct {
	report      health.Report
	runs        atomic.Int32
	sawDeadline atomic.Bool
}

func (f *fakeRunner) Run(ctx context.Context) health.Report {
	f.runs.Add(1)
	if _, ok := ctx.Deadline(); ok {
		f.sawDeadline.Store(true)
	}
	return f.report
}

func degradedReport() health.Report {
	return health.Aggregate(map[string]health.ProbeResult{
		"database": {Name: "database", Status: health.StatusHealthy},
		"rss":      {Name: "rss", Status: health.StatusUnhealthy},
		"ai":       {Name: "ai", Status: health.StatusHealthy},
		"news_api": {Name: "news_api", Status: health.StatusHealthy},
		"cloud":    {Name: "cloud", Status: health.StatusUnhealthy},
	}, time.Second)
}

func TestSweeper_Sweep(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	reg := prometheus.NewRegistry()
	metrics := NewSweepMetrics(reg)
	runner := &fakeRunner{report: degradedReport()}

	tracker := slo.NewTracker(10, reg)
	s, err := NewSweeper(runner, DefaultConfig(), metrics, tracker, logger)
	require.NoError(t, err)

	report := s.Sweep(context.Background())

	assert.Equal(t, health.StatusDegraded, report.Status)
	assert.True(t, runner.sawDeadline.Load(), "sweep must be bounded by SweepTimeout")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SweepsTotal.WithLabelValues("degraded")))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.HealthyProbes))
	rss, seen := tracker.Availability("rss")
	assert.True(t, seen)
	assert.Zero(t, rss)

	var line map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &line))
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "sweep completed", line["msg"])
	assert.Equal(t, "3/5 services healthy", line["summary"])
	assert.Equal(t, []any{"cloud", "rss"}, line["failing"])
}

func TestSweeper_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CronSchedule = "whenever"

	_, err := NewSweeper(&fakeRunner{}, cfg, nil, nil, discardLogger())
	assert.ErrorContains(t, err, "CronSchedule")
}

func TestSweeper_RunsOnSchedule(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CronSchedule = "@every 1s"
	runner := &fakeRunner{report: health.Aggregate(map[string]health.ProbeResult{
		"database": {Name: "database", Status: health.StatusHealthy},
	}, time.Millisecond)}

	s, err := NewSweeper(runner, cfg, nil, nil, discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	assert.False(t, s.Next().IsZero())

	assert.Eventually(t, func() bool { return runner.runs.Load() >= 1 }, 5*time.Second, 50*time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	s.Stop(stopCtx)
}
