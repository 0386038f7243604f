// Package ai finds a working generative model among configured alternatives.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"newsdesk/internal/observability/logging"
	"newsdesk/internal/observability/metrics"
	"newsdesk/internal/resilience/fallback"
)

var (
	// ErrNoWorkingModel is returned when every configured model failed.
	ErrNoWorkingModel = errors.New("no working ai model")

	// ErrNoModelsConfigured is returned when the model list is empty.
	ErrNoModelsConfigured = errors.New("no ai models configured")

	// ErrEmptyCompletion marks a model that answered with blank text.
	ErrEmptyCompletion = fmt.Errorf("model answered with blank text: %w", fallback.ErrBlocked)
)

// Generator produces a completion from a named model.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// ModelTestResult describes the first model that answered.
type ModelTestResult struct {
	Model     string                     `json:"model"`
	Latency   time.Duration              `json:"-"`
	Attempted []string                   `json:"attempted"`
	Attempts  []fallback.Attempt[string] `json:"attempts"`
	Response  string                     `json:"response"`
}

// ModelTester tries models in order until one produces text.
type ModelTester struct {
	gen    Generator
	prompt string
	delay  time.Duration
}

// NewModelTester creates a tester. delay is the pause between failed models.
func NewModelTester(gen Generator, prompt string, delay time.Duration) *ModelTester {
	return &ModelTester{gen: gen, prompt: prompt, delay: delay}
}

// Test sends the prompt to each model in order and returns the first that
// answers with non-blank text. All failing yields ErrNoWorkingModel wrapping
// the fallback exhaustion error.
func (t *ModelTester) Test(ctx context.Context, models []string) (*ModelTestResult, error) {
	logger := logging.FromContext(ctx)

	if len(models) == 0 {
		metrics.RecordModelTest("")
		return nil, ErrNoModelsConfigured
	}

	start := time.Now()
	res, err := fallback.Try(ctx, models,
		func(ctx context.Context, model string) (string, error) {
			return t.gen.Generate(ctx, model, t.prompt)
		},
		fallback.Options[string]{
			Delay:        t.delay,
			IsBlocked:    func(text string) bool { return strings.TrimSpace(text) == "" },
			BlockedError: ErrEmptyCompletion,
			Operation:    "ai_model",
		})
	if err != nil {
		metrics.RecordModelTest("")
		logger.WarnContext(ctx, "no ai model answered",
			slog.Any("models", models),
			slog.Duration("elapsed", time.Since(start)),
			slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", ErrNoWorkingModel, err)
	}

	attempted := make([]string, len(res.Attempts))
	for i, a := range res.Attempts {
		attempted[i] = a.Candidate
	}
	last := res.Attempts[len(res.Attempts)-1]

	metrics.RecordModelTest(res.Candidate)
	logger.InfoContext(ctx, "ai model answered",
		slog.String("model", res.Candidate),
		slog.Int("attempts", len(res.Attempts)),
		slog.Duration("latency", last.Elapsed))

	return &ModelTestResult{
		Model:     res.Candidate,
		Latency:   last.Elapsed,
		Attempted: attempted,
		Attempts:  res.Attempts,
		Response:  res.Value,
	}, nil
}

// MarshalJSON adds the latency in milliseconds.
func (r ModelTestResult) MarshalJSON() ([]byte, error) {
	type plain ModelTestResult
	return json.Marshal(struct {
		plain
		LatencyMS int64 `json:"latency_ms"`
	}{plain(r), r.Latency.Milliseconds()})
}
