// Package feed fetches RSS, Atom, and JSON feeds and normalizes their entries.
//
// Many publishers refuse requests that do not look like a browser or a known
// feed reader, and some answer a bot with a 200 HTML page instead of an error.
// The fetcher therefore rotates through a list of user agents with the fallback
// executor and treats an HTML response as a blocked attempt.
package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/observability/metrics"
	"newsdesk/internal/resilience/fallback"
	"newsdesk/internal/resilience/retry"

	"github.com/mmcdole/gofeed"
)

const acceptHeader = "application/rss+xml, application/atom+xml, application/xml, text/xml;q=0.9, */*;q=0.8"

// Result is a parsed feed together with the attempts it took to fetch it.
type Result struct {
	URL       string
	Title     string
	Items     []entity.FeedItem
	UserAgent string
	Attempts  []fallback.Attempt[string]
}

// Fetcher retrieves feeds over HTTP.
type Fetcher struct {
	cfg      Config
	client   *http.Client
	checkURL func(string) error
}

// NewFetcher creates a Fetcher. A nil client gets a default one; in both cases
// the redirect policy is replaced to enforce cfg.MaxRedirects.
func NewFetcher(cfg Config, client *http.Client) *Fetcher {
	return newFetcher(cfg, client, nil)
}

func newFetcher(cfg Config, client *http.Client, checkURL func(string) error) *Fetcher {
	var c http.Client
	if client != nil {
		c = *client
	}
	maxRedirects := cfg.MaxRedirects
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) > maxRedirects {
			return fmt.Errorf("%w: stopped after %d", ErrTooManyRedirects, maxRedirects)
		}
		if checkURL != nil {
			if err := checkURL(req.URL.String()); err != nil {
				return fmt.Errorf("%w: redirect to %s: %v", ErrForbiddenAddress, req.URL.Redacted(), err)
			}
		}
		return nil
	}
	return &Fetcher{cfg: cfg, client: &c, checkURL: checkURL}
}

type response struct {
	status      int
	contentType string
	body        []byte
}

// Fetch downloads and parses the feed at feedURL.
//
// Every identity failing yields ErrFeedUnavailable wrapping the executor's
// exhaustion error. A document that does not parse yields ErrFeedUnavailable
// wrapping ErrInvalidFeedFormat; parsing is not retried with another identity.
// A guarded Fetcher fails with ErrForbiddenAddress before any request when the
// Guard rejects feedURL.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) (*Result, error) {
	u, err := url.Parse(strings.TrimSpace(feedURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, feedURL)
	}
	feedURL = u.String()
	if f.checkURL != nil {
		if err := f.checkURL(feedURL); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrForbiddenAddress, feedURL, err)
		}
	}

	res, err := fallback.Try(ctx, f.cfg.UserAgents,
		func(ctx context.Context, userAgent string) (*response, error) {
			return f.get(ctx, feedURL, userAgent)
		},
		fallback.Options[*response]{
			Delay:        f.cfg.RetryDelay,
			IsBlocked:    isBlocked,
			BlockedError: ErrBlockedResponse,
			Operation:    "feed_fetch",
		})
	recordAttempts(res.Attempts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFeedUnavailable, feedURL, err)
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(res.Value.body))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w: %v", ErrFeedUnavailable, feedURL, ErrInvalidFeedFormat, err)
	}

	title, items := normalizeFeed(parsed, u, f.cfg.ExcerptRunes)
	metrics.RecordFeedParsed(len(items))

	return &Result{
		URL:       feedURL,
		Title:     title,
		Items:     items,
		UserAgent: res.Candidate,
		Attempts:  res.Attempts,
	}, nil
}

// get performs one request with one identity.
func (f *Fetcher) get(ctx context.Context, feedURL, userAgent string) (*response, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}
	if int64(len(body)) > f.cfg.MaxBodyBytes {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, f.cfg.MaxBodyBytes)
	}

	return &response{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        body,
	}, nil
}

// isBlocked reports whether the response is an HTML page rather than a feed.
func isBlocked(r *response) bool {
	mediaType, _, err := mime.ParseMediaType(r.contentType)
	if err != nil {
		mediaType, _, _ = strings.Cut(r.contentType, ";")
		mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

func recordAttempts(attempts []fallback.Attempt[string]) {
	for _, a := range attempts {
		switch {
		case a.Err == nil:
			metrics.RecordFeedFetch("success")
		case errors.Is(a.Err, fallback.ErrBlocked):
			metrics.RecordFeedFetch("blocked")
		default:
			metrics.RecordFeedFetch("error")
		}
	}
}
