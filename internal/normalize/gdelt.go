package normalize

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rickgao/gas-market-data/internal/model"
)

// GDELT seendate layouts.
const (
	gdeltSeenISO     = "20060102T150405Z"
	gdeltSeenCompact = "20060102150405"
)

// gdeltSourceKeys are tried in order for the source label.
var gdeltSourceKeys = []string{"domain", "sourcecountry", "sourceCountry", "sourcecollection", "sourceCollection", "source"}

// ArticleList normalizes a GDELT DOC 2.0 ArtList response.
type ArticleList struct {
	Classifier Classifier
}

// Validate reports whether raw is JSON. GDELT answers query syntax errors
// with a 200 and a plain-text body.
func (a ArticleList) Validate(raw []byte) error {
	if !json.Valid(raw) {
		return fmt.Errorf("gdelt: body is not valid JSON")
	}
	return nil
}

// Normalize implements Normalizer. A payload without an articles list
// yields an empty batch.
func (a ArticleList) Normalize(raw []byte) (Batch, error) {
	var payload struct {
		Articles []map[string]any `json:"articles"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Batch{}, fmt.Errorf("gdelt: %w: %v", ErrUnexpectedShape, err)
	}

	cls := classifierOrDefault(a.Classifier)

	var b Batch
	for _, art := range payload.Articles {
		title := stringField(art, "title")
		link := stringField(art, "url")
		seen := stringField(art, "seendate")
		if seen == "" {
			seen = stringField(art, "datetime")
		}
		if title == "" || link == "" || seen == "" {
			b.Dropped++
			continue
		}

		ts, err := ParseSeenDate(seen)
		if err != nil {
			b.Dropped++
			continue
		}

		source := "GDELT"
		for _, k := range gdeltSourceKeys {
			if s := stringField(art, k); s != "" {
				source = s
				break
			}
		}

		b.News = append(b.News, model.NewsEvent{
			ID:          NewsID(PrefixGDELT, seen, link),
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

// ParseSeenDate parses a GDELT seendate in UTC.
func ParseSeenDate(s string) (int64, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{gdeltSeenISO, gdeltSeenCompact} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UnixMilli(), nil
		}
	}
	return 0, fmt.Errorf("parse seendate %q", s)
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}
