package normalize

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/rickgao/gas-market-data/internal/model"
)

// DefaultFeedLimit is the number of items read from each feed.
const DefaultFeedLimit = 75

// Feed normalizes one RSS or Atom feed.
type Feed struct {
	FeedURL    string
	Limit      int
	Classifier Classifier
}

// Validate reports whether raw parses as a feed.
func (f Feed) Validate(raw []byte) error {
	if _, err := gofeed.NewParser().Parse(bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("feed %s: %w", f.FeedURL, err)
	}
	return nil
}

// Normalize implements Normalizer. Items without a title, link, or a
// parseable published/updated time are dropped.
func (f Feed) Normalize(raw []byte) (Batch, error) {
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(raw))
	if err != nil {
		return Batch{}, fmt.Errorf("feed %s: %w", f.FeedURL, err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	items := parsed.Items
	if len(items) > limit {
		items = items[:limit]
	}

	cls := classifierOrDefault(f.Classifier)
	source := SourceFromURL(f.FeedURL)

	var b Batch
	for _, item := range items {
		if item == nil {
			b.Dropped++
			continue
		}
		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			b.Dropped++
			continue
		}

		var ts int64
		switch {
		case item.PublishedParsed != nil:
			ts = item.PublishedParsed.UnixMilli()
		case item.UpdatedParsed != nil:
			ts = item.UpdatedParsed.UnixMilli()
		default:
			b.Dropped++
			continue
		}

		published := item.Published
		if published == "" {
			published = item.Updated
		}

		b.News = append(b.News, model.NewsEvent{
			ID:          NewsID(PrefixRSS, published, link),
			TimestampMs: ts,
			Category:    cls.Classify(title),
			Source:      source,
			Title:       title,
			URL:         link,
		})
	}

	slices.SortStableFunc(b.News, func(x, y model.NewsEvent) int {
		return cmp.Compare(x.TimestampMs, y.TimestampMs)
	})
	return b, nil
}
