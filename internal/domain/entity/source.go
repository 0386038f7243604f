package entity

import (
	"fmt"
	"strings"
)

// SourceCollection is a named group of RSS feeds sharing a language and category.
type SourceCollection struct {
	Name     string   `yaml:"name" json:"name"`
	Language string   `yaml:"language" json:"language"`
	Category string   `yaml:"category" json:"category"`
	Feeds    []string `yaml:"feeds" json:"feeds"`
}

// Validate checks that the collection is named and every feed URL is well formed.
// Feed URLs are operator configuration, so private hosts are allowed.
func (c *SourceCollection) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Field: "name", Message: "collection name is required"}
	}
	if len(c.Feeds) == 0 {
		return &ValidationError{Field: "feeds", Message: fmt.Sprintf("collection %q must list at least one feed", c.Name)}
	}
	for i, feed := range c.Feeds {
		if _, err := parseHTTPURL(feed); err != nil {
			return fmt.Errorf("collection %q feed %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// FeedRef identifies one feed URL and the collection it came from.
type FeedRef struct {
	URL        string
	Collection string
	Language   string
	Category   string
}

// FlattenFeeds lists every feed across collections in configuration order.
// A URL listed more than once is kept at its first position only.
func FlattenFeeds(collections []SourceCollection) []FeedRef {
	seen := make(map[string]struct{})
	var refs []FeedRef
	for _, c := range collections {
		for _, feed := range c.Feeds {
			u := strings.TrimSpace(feed)
			if u == "" {
				continue
			}
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			refs = append(refs, FeedRef{URL: u, Collection: c.Name, Language: c.Language, Category: c.Category})
		}
	}
	return refs
}
