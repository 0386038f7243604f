// Package fallback runs one logical operation against an ordered list of
// alternative strategies (candidates) until one of them succeeds.
//
// Candidates are tried strictly in order and never concurrently. Every attempt
// is recorded, so callers can report which strategies were tried and why they
// failed even when the operation eventually succeeds.
package fallback

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"newsdesk/internal/observability/metrics"
)

// Outcome is the result of a single attempt.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Attempt records one invocation of the operation with one candidate.
type Attempt[C any] struct {
	Candidate C
	Outcome   Outcome
	Elapsed   time.Duration
	Err       error
}

// MarshalJSON renders the attempt with its error as a plain string.
func (a Attempt[C]) MarshalJSON() ([]byte, error) {
	out := struct {
		Candidate C      `json:"candidate"`
		Outcome   string `json:"outcome"`
		ElapsedMS int64  `json:"elapsed_ms"`
		Error     string `json:"error,omitempty"`
	}{
		Candidate: a.Candidate,
		Outcome:   string(a.Outcome),
		ElapsedMS: a.Elapsed.Milliseconds(),
	}
	if a.Err != nil {
		out.Error = a.Err.Error()
	}
	return json.Marshal(out)
}

// Options controls a single Try invocation.
type Options[R any] struct {
	// Delay is the pause after a failed attempt. No pause follows the last candidate.
	Delay time.Duration

	// IsBlocked classifies a successful return value as a soft failure.
	// A nil classifier accepts every value the operation returns without error.
	IsBlocked func(R) bool

	// BlockedError is recorded for blocked attempts. It should wrap ErrBlocked;
	// nil records ErrBlocked itself.
	BlockedError error

	// Operation labels attempt metrics and log lines. Empty disables metrics.
	Operation string
}

// Result is the outcome of a successful Try.
type Result[C, R any] struct {
	Value     R
	Candidate C
	Attempts  []Attempt[C]
}

// Try invokes op with each candidate in order until one succeeds.
//
// An attempt fails when op returns an error or when opts.IsBlocked reports the
// returned value as blocked. When every candidate fails, Try returns an
// *ExhaustedError carrying all attempts and the last error. A cancelled context
// during the inter-attempt pause also ends the loop with an *ExhaustedError.
func Try[C, R any](ctx context.Context, candidates []C, op func(context.Context, C) (R, error), opts Options[R]) (Result[C, R], error) {
	var res Result[C, R]
	if len(candidates) == 0 {
		return res, ErrNoCandidates
	}

	attempts := make([]Attempt[C], 0, len(candidates))
	var lastErr error

	for i, candidate := range candidates {
		start := time.Now()
		value, err := op(ctx, candidate)
		if err == nil && opts.IsBlocked != nil && opts.IsBlocked(value) {
			err = opts.blockedError()
		}
		attempt := Attempt[C]{Candidate: candidate, Elapsed: time.Since(start)}

		if err == nil {
			attempt.Outcome = OutcomeSuccess
			attempts = append(attempts, attempt)
			recordAttempt(opts.Operation, attempt.Outcome)
			res.Value = value
			res.Candidate = candidate
			res.Attempts = attempts
			return res, nil
		}

		attempt.Outcome = OutcomeFailure
		attempt.Err = err
		attempts = append(attempts, attempt)
		recordAttempt(opts.Operation, attempt.Outcome)
		lastErr = err

		slog.DebugContext(ctx, "fallback attempt failed",
			slog.String("operation", opts.Operation),
			slog.Int("attempt", i+1),
			slog.Int("candidates", len(candidates)),
			slog.Any("candidate", candidate),
			slog.Duration("elapsed", attempt.Elapsed),
			slog.Any("error", err))

		if i == len(candidates)-1 {
			break
		}
		if waitErr := sleep(ctx, opts.Delay); waitErr != nil {
			lastErr = errors.Join(lastErr, waitErr)
			break
		}
	}

	return Result[C, R]{Attempts: attempts}, &ExhaustedError[C]{Attempts: attempts, Last: lastErr}
}

func (o Options[R]) blockedError() error {
	if o.BlockedError != nil {
		return o.BlockedError
	}
	return ErrBlocked
}

// sleep waits for d or until ctx is done. Tests replace it to observe pauses.
var sleep = func(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func recordAttempt(operation string, outcome Outcome) {
	if operation == "" {
		return
	}
	metrics.RecordFallbackAttempt(operation, string(outcome))
}
