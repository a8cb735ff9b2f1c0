package normalize

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"

	"github.com/rickgao/gas-market-data/internal/classify"
	"github.com/rickgao/gas-market-data/internal/model"
)

// ID prefixes, one per adapter type.
const (
	PrefixGDELT = "gdelt"
	PrefixRSS   = "rss"
)

// ErrUnexpectedShape is returned when a payload lacks the expected container.
var ErrUnexpectedShape = errors.New("unexpected payload shape")

// Normalizer turns one raw upstream document into records.
type Normalizer interface {
	Normalize(raw []byte) (Batch, error)
}

// Validator is implemented by normalizers that can tell a usable document
// from a malformed one before normalizing. Fetchers retry on a non-nil error.
type Validator interface {
	Validate(raw []byte) error
}

// Classifier assigns a category to a headline.
type Classifier interface {
	Classify(title string) model.Category
}

// Batch is the output of one Normalize call. Series is left empty on every
// record; the store stamps the series it writes under.
type Batch struct {
	Prices  []model.PricePoint
	News    []model.NewsEvent
	Dropped int
}

// NewsID derives a stable event id from the raw published string and URL.
func NewsID(prefix, published, link string) string {
	sum := sha1.Sum([]byte(published + "|" + link))
	return prefix + "_" + hex.EncodeToString(sum[:])
}

// SourceFromURL returns the host of feedURL without a leading "www.",
// or "RSS" when the URL has no host.
func SourceFromURL(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil || u.Host == "" {
		return "RSS"
	}
	return strings.TrimPrefix(u.Host, "www.")
}

func classifierOrDefault(c Classifier) Classifier {
	if c == nil {
		return classify.Default
	}
	return c
}
