// Package entity defines the core domain values shared across the application:
// normalized feed items, configured source collections, and their validation rules.
package entity

import "time"

// FeedItem is one normalized entry from an RSS, Atom, or JSON feed.
// It has no identity beyond its URL and is never persisted.
type FeedItem struct {
	SourceName  string     `json:"source_name"`
	CreatorName string     `json:"creator_name,omitempty"`
	Title       string     `json:"title,omitempty"`
	URL         string     `json:"url"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Content     string     `json:"content,omitempty"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Categories  []string   `json:"categories"`
}
