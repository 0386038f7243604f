package feed

import (
	"fmt"
	"strings"
	"time"
)

// Config controls how feeds are fetched.
//
// UserAgents is the ordered identity list the fetcher rotates through when a
// feed host refuses or blocks a request. Order matters: the first identity that
// returns a real feed document wins.
type Config struct {
	// UserAgents are tried in order, one request each.
	// Default: a desktop browser, a feed reader, then the service's own agent.
	UserAgents []string

	// Timeout bounds a single request, including redirects and body read.
	// Default: 10s
	Timeout time.Duration

	// MaxRedirects is the number of redirects followed per request.
	// Default: 5
	MaxRedirects int

	// RetryDelay is the pause before trying the next identity.
	// Default: 1s
	RetryDelay time.Duration

	// MaxBodyBytes caps the response body. Larger documents fail the attempt.
	// Default: 5MiB
	MaxBodyBytes int64

	// ExcerptRunes is the excerpt length in characters.
	// Default: 300
	ExcerptRunes int
}

// DefaultUserAgents is the identity rotation used when none is configured.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Feedly/1.0 (+http://www.feedly.com/fetcher.html; like FeedFetcher-Google)",
	"newsdesk-feed-fetcher/1.0",
}

// DefaultConfig returns the production fetch settings.
func DefaultConfig() Config {
	return Config{
		UserAgents:   append([]string(nil), DefaultUserAgents...),
		Timeout:      10 * time.Second,
		MaxRedirects: 5,
		RetryDelay:   time.Second,
		MaxBodyBytes: 5 << 20,
		ExcerptRunes: 300,
	}
}

// Validate checks the configuration for values the fetcher cannot work with.
func (c *Config) Validate() error {
	if len(c.UserAgents) == 0 {
		return fmt.Errorf("at least one user agent is required")
	}
	for i, ua := range c.UserAgents {
		if strings.TrimSpace(ua) == "" {
			return fmt.Errorf("user agent %d is empty", i)
		}
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay must not be negative, got %v", c.RetryDelay)
	}
	if c.MaxBodyBytes < 1024 || c.MaxBodyBytes > 100<<20 {
		return fmt.Errorf("max body size must be between 1KiB and 100MiB, got %d", c.MaxBodyBytes)
	}
	if c.ExcerptRunes < 1 {
		return fmt.Errorf("excerpt length must be positive, got %d", c.ExcerptRunes)
	}
	return nil
}
