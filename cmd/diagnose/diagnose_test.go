package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/health"
	"newsdesk/internal/infra/feed"
	"newsdesk/internal/resilience/fallback"
	aiUC "newsdesk/internal/usecase/ai"
)

type fakeFetcher struct {
	mu      sync.Mutex
	fetched []string
	fail    map[string]bool
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*feed.Result, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, url)
	f.mu.Unlock()

	if f.fail[url] {
		exhausted := &fallback.ExhaustedError[string]{
			Attempts: []fallback.Attempt[string]{
				{Candidate: "ua-1", Outcome: fallback.OutcomeFailure, Err: errors.New("HTTP 403")},
				{Candidate: "ua-2", Outcome: fallback.OutcomeFailure, Err: errors.New("HTTP 403")},
			},
			Last: errors.New("HTTP 403"),
		}
		return nil, fmt.Errorf("%w: %w", feed.ErrFeedUnavailable, exhausted)
	}
	return &feed.Result{
		URL:       url,
		Title:     "Feed",
		Items:     []entity.FeedItem{{Title: "a"}, {Title: "b"}},
		UserAgent: "ua-1",
		Attempts:  []fallback.Attempt[string]{{Candidate: "ua-1", Outcome: fallback.OutcomeSuccess}},
	}, nil
}

type fakeTester struct {
	res *aiUC.ModelTestResult
	err error
	got []string
}

func (f *fakeTester) Test(_ context.Context, models []string) (*aiUC.ModelTestResult, error) {
	f.got = models
	return f.res, f.err
}

type fakeRunner struct{ status health.Status }

func (f fakeRunner) Run(context.Context) health.Report {
	return health.Report{Status: f.status, Summary: "x", Probes: map[string]health.ProbeResult{}}
}

// run executes the CLI against e and returns stdout.
func run(t *testing.T, e *env, args ...string) (string, error) {
	t.Helper()
	orig := newEnv
	newEnv = func(context.Context, *slog.Logger) (*env, error) { return e, nil }
	t.Cleanup(func() { newEnv = orig })

	var out bytes.Buffer
	cmd := newRootCmd(slog.New(slog.NewTextHandler(io.Discard, nil)))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestFeeds_ExplicitURLsTable(t *testing.T) {
	fetcher := &fakeFetcher{fail: map[string]bool{"https://b.example/rss": true}}
	e := &env{Fetcher: fetcher, Parallelism: 2}

	out, err := run(t, e, "feeds", "https://a.example/rss", "https://b.example/rss")

	assert.ErrorIs(t, err, errChecksFailed)
	assert.ElementsMatch(t, []string{"https://a.example/rss", "https://b.example/rss"}, fetcher.fetched)
	assert.Contains(t, out, "STATUS")
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "1/2 feeds working")
}

func TestFeeds_ConfiguredSourcesJSON(t *testing.T) {
	e := &env{
		Fetcher: &fakeFetcher{},
		Sources: []entity.SourceCollection{{
			Name:  "world-en",
			Feeds: []string{"https://a.example/rss", "https://a.example/rss", "https://c.example/atom"},
		}},
	}

	out, err := run(t, e, "feeds", "--json")
	require.NoError(t, err)

	var reports []feedReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 2, "duplicate URLs are checked once")
	for _, r := range reports {
		assert.True(t, r.OK)
		assert.Equal(t, 2, r.Items)
		assert.Equal(t, "world-en", r.Collection)
		assert.Len(t, r.Attempts, 1)
	}
}

func TestFeeds_SourcesFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`collections:
  - name: tech
    language: en
    feeds:
      - https://d.example/feed
`), 0o600))
	fetcher := &fakeFetcher{}

	_, err := run(t, &env{Fetcher: fetcher}, "feeds", "--sources", path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://d.example/feed"}, fetcher.fetched)
}

func TestFeeds_FailedFeedKeepsAttempts(t *testing.T) {
	e := &env{Fetcher: &fakeFetcher{fail: map[string]bool{"https://b.example/rss": true}}}

	out, err := run(t, e, "feeds", "--json", "https://b.example/rss")
	assert.ErrorIs(t, err, errChecksFailed)

	var reports []feedReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)
	assert.False(t, reports[0].OK)
	assert.Len(t, reports[0].Attempts, 2)
	assert.Contains(t, reports[0].Error, "HTTP 403")
}

func TestFeeds_NothingToCheck(t *testing.T) {
	_, err := run(t, &env{Fetcher: &fakeFetcher{}}, "feeds")
	require.Error(t, err)
	assert.NotErrorIs(t, err, errChecksFailed)
}

func TestModels(t *testing.T) {
	tester := &fakeTester{res: &aiUC.ModelTestResult{
		Model:     "model-b",
		Latency:   1200 * time.Millisecond,
		Attempted: []string{"model-a", "model-b"},
		Attempts: []fallback.Attempt[string]{
			{Candidate: "model-a", Outcome: fallback.OutcomeFailure, Err: errors.New("overloaded")},
			{Candidate: "model-b", Outcome: fallback.OutcomeSuccess},
		},
		Response: "pong",
	}}

	out, err := run(t, &env{Tester: tester, Models: []string{"configured"}}, "models", "--model", "model-a", "--model", "model-b")
	require.NoError(t, err)

	assert.Equal(t, []string{"model-a", "model-b"}, tester.got)
	assert.Contains(t, out, "working model: model-b")
	assert.Contains(t, out, "overloaded")
}

func TestModels_DefaultsToConfiguredOrder(t *testing.T) {
	tester := &fakeTester{res: &aiUC.ModelTestResult{Model: "first"}}

	_, err := run(t, &env{Tester: tester, Models: []string{"first", "second"}}, "models")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, tester.got)
}

func TestModels_NoneWorking(t *testing.T) {
	exhausted := &fallback.ExhaustedError[string]{
		Attempts: []fallback.Attempt[string]{{Candidate: "only", Outcome: fallback.OutcomeFailure, Err: errors.New("down")}},
		Last:     errors.New("down"),
	}
	tester := &fakeTester{err: fmt.Errorf("%w: %w", aiUC.ErrNoWorkingModel, exhausted)}

	out, err := run(t, &env{Tester: tester, Models: []string{"only"}}, "models", "--json")
	assert.ErrorIs(t, err, errChecksFailed)

	var body struct {
		Error    string            `json:"error"`
		Attempts []json.RawMessage `json:"attempts"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Contains(t, body.Error, "no working ai model")
	assert.Len(t, body.Attempts, 1)
}

func TestModels_NotConfigured(t *testing.T) {
	_, err := run(t, &env{}, "models")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AI_API_KEY")
}

func TestHealth_ExitStatus(t *testing.T) {
	tests := []struct {
		status  health.Status
		wantErr bool
	}{
		{health.StatusHealthy, false},
		{health.StatusDegraded, false},
		{health.StatusUnhealthy, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			out, err := run(t, &env{Runner: fakeRunner{status: tt.status}}, "health")
			if tt.wantErr {
				assert.ErrorIs(t, err, errChecksFailed)
			} else {
				assert.NoError(t, err)
			}

			var body map[string]any
			require.NoError(t, json.Unmarshal([]byte(out), &body))
			assert.Equal(t, string(tt.status), body["status"])
		})
	}
}
