package ai

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdesk/internal/resilience/fallback"
)

type reply struct {
	text string
	err  error
}

// fakeGenerator answers per model and records the call order.
type fakeGenerator struct {
	mu      sync.Mutex
	replies map[string]reply
	calls   []string
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, model, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, model)
	f.prompts = append(f.prompts, prompt)
	r, ok := f.replies[model]
	if !ok {
		return "", errors.New("model not found")
	}
	return r.text, r.err
}

var models = []string{"primary", "secondary", "tertiary"}

func TestModelTester_Test(t *testing.T) {
	errDown := errors.New("503 overloaded")

	tests := []struct {
		name          string
		replies       map[string]reply
		wantModel     string
		wantAttempted []string
	}{
		{
			name:          "first model works",
			replies:       map[string]reply{"primary": {text: "pong"}},
			wantModel:     "primary",
			wantAttempted: []string{"primary"},
		},
		{
			name: "second model works",
			replies: map[string]reply{
				"primary":   {err: errDown},
				"secondary": {text: "pong"},
			},
			wantModel:     "secondary",
			wantAttempted: []string{"primary", "secondary"},
		},
		{
			name: "third model works",
			replies: map[string]reply{
				"primary":   {err: errDown},
				"secondary": {err: errDown},
				"tertiary":  {text: "pong"},
			},
			wantModel:     "tertiary",
			wantAttempted: []string{"primary", "secondary", "tertiary"},
		},
		{
			name: "blank answer falls back",
			replies: map[string]reply{
				"primary":   {text: "  \n"},
				"secondary": {text: "pong"},
			},
			wantModel:     "secondary",
			wantAttempted: []string{"primary", "secondary"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{replies: tt.replies}
			tester := NewModelTester(gen, "ping", 0)

			res, err := tester.Test(context.Background(), models)
			require.NoError(t, err)

			assert.Equal(t, tt.wantModel, res.Model)
			assert.Equal(t, "pong", res.Response)
			assert.Equal(t, tt.wantAttempted, res.Attempted)
			assert.Equal(t, tt.wantAttempted, gen.calls)
			require.Len(t, res.Attempts, len(tt.wantAttempted))

			last := res.Attempts[len(res.Attempts)-1]
			assert.Equal(t, fallback.OutcomeSuccess, last.Outcome)
			assert.Equal(t, last.Elapsed, res.Latency)
			for _, a := range res.Attempts[:len(res.Attempts)-1] {
				assert.Equal(t, fallback.OutcomeFailure, a.Outcome)
				assert.Error(t, a.Err)
			}
			for _, p := range gen.prompts {
				assert.Equal(t, "ping", p)
			}
		})
	}
}

func TestModelTester_BlankAnswerRecordsEmptyCompletion(t *testing.T) {
	gen := &fakeGenerator{replies: map[string]reply{
		"primary":   {text: ""},
		"secondary": {text: "pong"},
	}}

	res, err := NewModelTester(gen, "ping", 0).Test(context.Background(), models)
	require.NoError(t, err)

	assert.ErrorIs(t, res.Attempts[0].Err, ErrEmptyCompletion)
	assert.ErrorIs(t, res.Attempts[0].Err, fallback.ErrBlocked)
}

func TestModelTester_AllFail(t *testing.T) {
	errDown := errors.New("503 overloaded")
	gen := &fakeGenerator{replies: map[string]reply{
		"primary":   {err: errDown},
		"secondary": {text: ""},
		"tertiary":  {err: errDown},
	}}

	res, err := NewModelTester(gen, "ping", 0).Test(context.Background(), models)
	require.Error(t, err)
	assert.Nil(t, res)

	assert.ErrorIs(t, err, ErrNoWorkingModel)
	assert.ErrorIs(t, err, fallback.ErrAllCandidatesExhausted)
	assert.ErrorIs(t, err, errDown)

	var exhausted *fallback.ExhaustedError[string]
	require.ErrorAs(t, err, &exhausted)
	require.Len(t, exhausted.Attempts, 3)
	for i, a := range exhausted.Attempts {
		assert.Equal(t, models[i], a.Candidate)
		assert.Equal(t, fallback.OutcomeFailure, a.Outcome)
	}
	assert.Equal(t, models, gen.calls)
}

func TestModelTester_NoModels(t *testing.T) {
	gen := &fakeGenerator{}

	_, err := NewModelTester(gen, "ping", 0).Test(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoModelsConfigured)
	assert.Empty(t, gen.calls)
}

func TestModelTester_CancelledDuringDelay(t *testing.T) {
	gen := &fakeGenerator{replies: map[string]reply{"primary": {err: errors.New("down")}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewModelTester(gen, "ping", time.Hour).Test(ctx, models)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoWorkingModel)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"primary"}, gen.calls)
}

func TestModelTestResult_MarshalJSON(t *testing.T) {
	res := ModelTestResult{
		Model:     "secondary",
		Latency:   1500 * time.Millisecond,
		Attempted: []string{"primary", "secondary"},
		Attempts: []fallback.Attempt[string]{
			{Candidate: "primary", Outcome: fallback.OutcomeFailure, Elapsed: 20 * time.Millisecond, Err: errors.New("down")},
			{Candidate: "secondary", Outcome: fallback.OutcomeSuccess, Elapsed: 1500 * time.Millisecond},
		},
		Response: "pong",
	}

	raw, err := json.Marshal(res)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "secondary", got["model"])
	assert.EqualValues(t, 1500, got["latency_ms"])
	assert.Equal(t, []any{"primary", "secondary"}, got["attempted"])
	assert.NotContains(t, got, "Latency")

	attempts, ok := got["attempts"].([]any)
	require.True(t, ok)
	first := attempts[0].(map[string]any)
	assert.Equal(t, "down", first["error"])
	assert.EqualValues(t, 20, first["elapsed_ms"])
}
