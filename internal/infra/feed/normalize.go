package feed

import (
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/utils/text"
)

// normalizeFeed converts parsed entries into FeedItems. Entries without a link
// are dropped. The returned title is the feed's own, or the source host.
func normalizeFeed(feed *gofeed.Feed, source *url.URL, excerptRunes int) (string, []entity.FeedItem) {
	title := cleanText(feed.Title)
	sourceName := title
	if sourceName == "" {
		sourceName = source.Hostname()
	}

	items := make([]entity.FeedItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it == nil {
			continue
		}
		item, ok := normalizeItem(it, sourceName, excerptRunes)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return title, items
}

func normalizeItem(it *gofeed.Item, sourceName string, excerptRunes int) (entity.FeedItem, bool) {
	link := strings.TrimSpace(it.Link)
	if link == "" && len(it.Links) > 0 {
		link = strings.TrimSpace(it.Links[0])
	}
	if link == "" {
		return entity.FeedItem{}, false
	}

	content := cleanText(it.Content)

	// Description first; many feeds put the full article in content.
	excerpt := text.HTMLToText(it.Description)
	if excerpt == "" {
		excerpt = text.HTMLToText(content)
	}

	return entity.FeedItem{
		SourceName:  sourceName,
		CreatorName: creatorName(it),
		Title:       cleanText(it.Title),
		URL:         link,
		PublishedAt: publishedAt(it),
		Content:     content,
		Excerpt:     text.Truncate(excerpt, excerptRunes),
		Categories:  cleanList(it.Categories),
	}, true
}

func creatorName(it *gofeed.Item) string {
	for _, p := range it.Authors {
		if p != nil {
			if name := cleanText(p.Name); name != "" {
				return name
			}
		}
	}
	if it.Author != nil {
		if name := cleanText(it.Author.Name); name != "" {
			return name
		}
	}
	if it.DublinCoreExt != nil {
		for _, c := range it.DublinCoreExt.Creator {
			if name := cleanText(c); name != "" {
				return name
			}
		}
	}
	return ""
}

func publishedAt(it *gofeed.Item) *time.Time {
	t := it.PublishedParsed
	if t == nil {
		t = it.UpdatedParsed
	}
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}

func cleanText(s string) string {
	return text.CollapseLines(s)
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if c := cleanText(s); c != "" {
			out = append(out, c)
		}
	}
	return out
}
