package probes

import (
	"context"
	"errors"
	"fmt"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/health"
	"newsdesk/internal/infra/feed"
	"newsdesk/internal/resilience/fallback"
	"newsdesk/internal/resilience/fanout"
)

// FeedFetcher fetches and parses one feed.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) (*feed.Result, error)
}

// FeedStatus is the per-feed detail in the rss probe's data.
type FeedStatus struct {
	URL       string `json:"url"`
	Source    string `json:"source"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	Items     int    `json:"items"`
	Attempts  int    `json:"attempts"`
	ElapsedMS int64  `json:"elapsed_ms"`
}

// RSS fetches every configured feed, a bounded number at a time.
type RSS struct {
	fetcher     FeedFetcher
	feeds       []entity.FeedRef
	parallelism int
}

// NewRSS creates the probe over the de-duplicated feeds of collections.
func NewRSS(fetcher FeedFetcher, collections []entity.SourceCollection, parallelism int) *RSS {
	return &RSS{fetcher: fetcher, feeds: entity.FlattenFeeds(collections), parallelism: parallelism}
}

func (r *RSS) Name() string { return NameRSS }

// Check is healthy when every feed works, degraded when some do, and
// unhealthy when none do or none are configured.
func (r *RSS) Check(ctx context.Context) health.ProbeResult {
	total := len(r.feeds)
	if total == 0 {
		return health.Unhealthy("no RSS feeds configured", nil, nil)
	}

	tasks := make([]fanout.Task[*feed.Result], total)
	for i, ref := range r.feeds {
		tasks[i] = func(ctx context.Context) (*feed.Result, error) {
			return r.fetcher.Fetch(ctx, ref.URL)
		}
	}
	outcomes := fanout.Settle(ctx, r.parallelism, tasks)

	statuses := make([]FeedStatus, total)
	ok := 0
	for i, o := range outcomes {
		st := FeedStatus{
			URL:       r.feeds[i].URL,
			Source:    r.feeds[i].Collection,
			ElapsedMS: o.Elapsed.Milliseconds(),
		}
		switch {
		case o.Err != nil:
			st.Error = o.Err.Error()
			st.Attempts = attemptCount(o.Err)
		case o.Value == nil:
			st.Error = "fetcher returned no result"
		default:
			st.OK = true
			st.UserAgent = o.Value.UserAgent
			st.Items = len(o.Value.Items)
			st.Attempts = len(o.Value.Attempts)
			ok++
		}
		statuses[i] = st
	}

	res := health.ProbeResult{
		Status:  health.Quorum(ok, total),
		Message: fmt.Sprintf("%d/%d RSS feeds working", ok, total),
		Data:    statuses,
	}
	if ok == 0 {
		res.Error = "all RSS feeds failed"
	}
	return res
}

func attemptCount(err error) int {
	var exhausted *fallback.ExhaustedError[string]
	if errors.As(err, &exhausted) {
		return len(exhausted.Attempts)
	}
	return 0
}
