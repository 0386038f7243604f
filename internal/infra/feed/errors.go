package feed

import (
	"errors"
	"fmt"

	"newsdesk/internal/resilience/fallback"
)

var (
	// ErrFeedUnavailable is returned when no identity produced a usable feed document.
	ErrFeedUnavailable = errors.New("feed unavailable")

	// ErrBlockedResponse marks an attempt whose response was an HTML page
	// (login wall, bot challenge, error page) instead of a feed document.
	ErrBlockedResponse = fmt.Errorf("feed host served html instead of a feed: %w", fallback.ErrBlocked)

	// ErrInvalidFeedFormat means the document could not be parsed as RSS, Atom, or JSON Feed.
	ErrInvalidFeedFormat = errors.New("invalid feed format")

	// ErrInvalidURL is returned before any request is made.
	ErrInvalidURL = errors.New("invalid feed url")

	// ErrBodyTooLarge fails an attempt whose body exceeds Config.MaxBodyBytes.
	ErrBodyTooLarge = errors.New("feed body exceeds size limit")

	// ErrTooManyRedirects fails an attempt that exceeds Config.MaxRedirects.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrForbiddenAddress fails a guarded request whose target or redirect
	// points at an address the Guard rejects.
	ErrForbiddenAddress = errors.New("feed url points to a forbidden address")
)
