package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/handler/http/respond"
	"newsdesk/internal/infra/feed"
	"newsdesk/internal/resilience/fallback"
)

// FeedFetcher fetches and parses one feed.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) (*feed.Result, error)
}

// FeedPreview is the body of GET /feeds/preview.
type FeedPreview struct {
	URL       string                     `json:"url"`
	Title     string                     `json:"title"`
	UserAgent string                     `json:"user_agent,omitempty"`
	Count     int                        `json:"count"`
	Items     []entity.FeedItem          `json:"items"`
	Attempts  []fallback.Attempt[string] `json:"attempts"`
	Error     string                     `json:"error,omitempty"`
}

// FeedHandler previews a feed without storing anything.
type FeedHandler struct {
	Fetcher FeedFetcher
	// ValidateURL rejects URLs the server must not fetch. Nil skips the check.
	ValidateURL func(string) error
	// Timeout bounds the whole preview, every identity included. Zero relies
	// on the fetcher's per-attempt timeout.
	Timeout time.Duration
}

// Preview fetches the feed named by the url query parameter.
// GET /feeds/preview?url=
// 400 for a missing or rejected URL (redirect targets included), 502 when
// every user agent failed.
func (h *FeedHandler) Preview(w http.ResponseWriter, r *http.Request) {
	target := strings.TrimSpace(r.URL.Query().Get("url"))
	if target == "" {
		respond.Error(w, http.StatusBadRequest, "url query parameter is required")
		return
	}
	if h.ValidateURL != nil {
		if err := h.ValidateURL(target); err != nil {
			respond.SafeError(w, http.StatusBadRequest, err)
			return
		}
	}

	ctx, cancel := detachedContext(r, h.Timeout)
	defer cancel()

	res, err := h.Fetcher.Fetch(ctx, target)
	switch {
	case errors.Is(err, feed.ErrInvalidURL):
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		body := FeedPreview{URL: target, Items: []entity.FeedItem{}, Attempts: []fallback.Attempt[string]{}, Error: err.Error()}
		var exhausted *fallback.ExhaustedError[string]
		if errors.As(err, &exhausted) {
			body.Attempts = exhausted.Attempts
		}
		if errors.Is(err, feed.ErrForbiddenAddress) {
			respond.JSON(w, http.StatusBadRequest, body)
			return
		}
		if !errors.Is(err, feed.ErrFeedUnavailable) {
			respond.SafeError(w, http.StatusInternalServerError, err)
			return
		}
		respond.JSON(w, http.StatusBadGateway, body)
		return
	}

	items := res.Items
	if items == nil {
		items = []entity.FeedItem{}
	}
	respond.JSON(w, http.StatusOK, FeedPreview{
		URL:       res.URL,
		Title:     res.Title,
		UserAgent: res.UserAgent,
		Count:     len(items),
		Items:     items,
		Attempts:  res.Attempts,
	})
}
