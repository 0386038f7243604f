package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"newsdesk/internal/observability/metrics"
	"newsdesk/internal/observability/tracing"
	"newsdesk/internal/resilience/fanout"
)

// Set is a named collection of independent probes run together.
type Set struct {
	probes  []Probe
	byName  map[string]Probe
	timeout time.Duration
	logger  *slog.Logger
}

// NewSet builds a probe set. timeout bounds each probe individually; zero
// disables the per-probe deadline. Probe names must be unique.
func NewSet(timeout time.Duration, logger *slog.Logger, probes ...Probe) (*Set, error) {
	if logger == nil {
		logger = slog.Default()
	}
	byName := make(map[string]Probe, len(probes))
	for _, p := range probes {
		if _, dup := byName[p.Name()]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateProbe, p.Name())
		}
		byName[p.Name()] = p
	}
	return &Set{probes: probes, byName: byName, timeout: timeout, logger: logger}, nil
}

// Names returns the probe names in registration order.
func (s *Set) Names() []string {
	names := make([]string, len(s.probes))
	for i, p := range s.probes {
		names[i] = p.Name()
	}
	return names
}

// Run executes every probe concurrently, waits for all of them to settle,
// and aggregates the results. A probe that panics is reported as unhealthy
// with the panic message; its siblings are unaffected.
func (s *Set) Run(ctx context.Context) Report {
	start := time.Now()

	tasks := make([]fanout.Task[ProbeResult], len(s.probes))
	for i, p := range s.probes {
		tasks[i] = func(ctx context.Context) (ProbeResult, error) {
			return s.check(ctx, p), nil
		}
	}
	outcomes := fanout.Settle(ctx, 0, tasks)

	results := make(map[string]ProbeResult, len(s.probes))
	for i, o := range outcomes {
		results[s.probes[i].Name()] = s.settle(s.probes[i].Name(), o)
	}

	report := Aggregate(results, time.Since(start))
	report.CheckedAt = start.UTC()

	metrics.RecordHealthCheck(string(report.Status), report.Status.Score())
	s.logger.InfoContext(ctx, "health check completed",
		slog.String("status", string(report.Status)),
		slog.String("summary", report.Summary),
		slog.Duration("elapsed", report.Elapsed))

	return report
}

// RunOne executes a single probe with the same isolation as Run.
func (s *Set) RunOne(ctx context.Context, name string) (ProbeResult, error) {
	p, ok := s.byName[name]
	if !ok {
		return ProbeResult{}, fmt.Errorf("%w: %s", ErrUnknownProbe, name)
	}
	outcomes := fanout.Settle(ctx, 1, []fanout.Task[ProbeResult]{
		func(ctx context.Context) (ProbeResult, error) { return s.check(ctx, p), nil },
	})
	return s.settle(name, outcomes[0]), nil
}

// check runs one probe under its own deadline and span.
func (s *Set) check(ctx context.Context, p Probe) ProbeResult {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	ctx, span := tracing.GetTracer().Start(ctx, "probe."+p.Name())
	defer span.End()

	start := time.Now()
	r := p.Check(ctx)
	if r.Elapsed == 0 {
		r.Elapsed = time.Since(start)
	}

	span.SetAttributes(
		attribute.String("probe.name", p.Name()),
		attribute.String("probe.status", string(r.Status)),
	)
	if r.Status == StatusUnhealthy {
		span.SetStatus(codes.Error, r.Error)
	}
	return r
}

// settle turns a fan-out outcome into the probe's final result.
func (s *Set) settle(name string, o fanout.Outcome[ProbeResult]) ProbeResult {
	r := o.Value
	if o.Err != nil {
		var perr *fanout.PanicError
		if errors.As(o.Err, &perr) {
			s.logger.Error("probe panicked",
				slog.String("probe", name),
				slog.Any("panic", perr.Value),
				slog.String("stack", string(perr.Stack)))
		}
		r = Unhealthy("probe failed unexpectedly", o.Err, nil)
		r.Elapsed = o.Elapsed
	}
	r.Name = name
	if r.Status == "" {
		r.Status = StatusUnhealthy
	}

	metrics.RecordProbe(name, string(r.Status), r.Status.Score(), r.Elapsed)
	if r.Status != StatusHealthy {
		s.logger.Warn("probe not healthy",
			slog.String("probe", name),
			slog.String("status", string(r.Status)),
			slog.String("message", r.Message),
			slog.String("error", r.Error))
	}
	return r
}
