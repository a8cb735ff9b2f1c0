package upstream

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Default upstream endpoints.
const (
	DefaultEIABaseURL  = "https://api.eia.gov/v2"
	DefaultGDELTDocURL = "https://api.gdeltproject.org/api/v2/doc/doc"
)

// gdeltTimeLayout is the GDELT DOC API startdatetime format.
const gdeltTimeLayout = "20060102150405"

// feedAccept is sent to RSS/Atom sources.
const feedAccept = "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.9, */*;q=0.8"

// EIASeriesRequest builds a request for one EIA v2 series.
// An empty apiKey yields ErrMissingCredential.
func EIASeriesRequest(baseURL, apiKey, seriesID string) (Request, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return Request{}, fmt.Errorf("eia series %s: api key: %w", seriesID, ErrMissingCredential)
	}
	if baseURL == "" {
		baseURL = DefaultEIABaseURL
	}
	return Request{
		URL:   strings.TrimRight(baseURL, "/") + "/seriesid/" + url.PathEscape(seriesID),
		Query: url.Values{"api_key": {apiKey}},
	}, nil
}

// GDELTArticlesRequest builds a DOC 2.0 article list query covering
// everything seen since the given time.
func GDELTArticlesRequest(baseURL, query string, since time.Time, maxRecords int) Request {
	if baseURL == "" {
		baseURL = DefaultGDELTDocURL
	}
	return Request{
		URL: baseURL,
		Query: url.Values{
			"query":         {query},
			"mode":          {"ArtList"},
			"format":        {"json"},
			"maxrecords":    {strconv.Itoa(maxRecords)},
			"startdatetime": {since.UTC().Format(gdeltTimeLayout)},
			"sort":          {"hybridrel"},
		},
	}
}

// FeedRequest builds a request for an RSS or Atom feed. accept validates
// the document so unparseable 200s are retried.
func FeedRequest(feedURL string, accept func([]byte) error) Request {
	return Request{
		URL:    feedURL,
		Header: http.Header{"Accept": {feedAccept}},
		Accept: accept,
	}
}
