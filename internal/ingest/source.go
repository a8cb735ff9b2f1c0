package ingest

import (
	"fmt"
	"time"

	"github.com/rickgao/gas-market-data/internal/classify"
	"github.com/rickgao/gas-market-data/internal/config"
	"github.com/rickgao/gas-market-data/internal/normalize"
	"github.com/rickgao/gas-market-data/internal/upstream"
)

// Kind is the table a source writes to.
type Kind string

const (
	KindPrices Kind = "prices"
	KindNews   Kind = "news"
)

// RequestFunc builds the upstream request for a run starting at now.
type RequestFunc func(now time.Time) (upstream.Request, error)

// Source is one upstream document and the series its records belong to.
type Source struct {
	Name       string
	Kind       Kind
	Series     string
	Request    RequestFunc
	Normalizer normalize.Normalizer
}

// request builds the source's request and attaches the normalizer's
// validator so malformed 2xx bodies are retried.
func (s Source) request(now time.Time) (upstream.Request, error) {
	req, err := s.Request(now)
	if err != nil {
		return upstream.Request{}, err
	}
	if v, ok := s.Normalizer.(normalize.Validator); ok && req.Accept == nil {
		req.Accept = v.Validate
	}
	return req, nil
}

// BuildSources returns one source per EIA series, GDELT query and feed URL
// enabled in cfg.
func BuildSources(cfg config.SourcesConfig) []Source {
	var sources []Source

	if !cfg.EIA.Disabled {
		for _, s := range cfg.EIA.Series {
			sources = append(sources, eiaSource(cfg.EIA, s))
		}
	}

	if !cfg.GDELT.Disabled {
		for _, q := range cfg.GDELT.Queries {
			sources = append(sources, gdeltSource(cfg.GDELT.BaseURL, q))
		}
	}

	if !cfg.Feeds.Disabled {
		for _, u := range cfg.Feeds.URLs {
			sources = append(sources, feedSource(u, cfg.Feeds.Series, cfg.Feeds.Limit))
		}
	}

	return sources
}

func eiaSource(cfg config.EIAConfig, series config.EIASeries) Source {
	baseURL, apiKey, id := cfg.BaseURL, cfg.APIKey, series.ID
	return Source{
		Name:   "eia:" + id,
		Kind:   KindPrices,
		Series: series.Label,
		Request: func(time.Time) (upstream.Request, error) {
			return upstream.EIASeriesRequest(baseURL, apiKey, id)
		},
		Normalizer: normalize.PriceSeries{Source: "EIA:" + id},
	}
}

func gdeltSource(baseURL string, q config.GDELTQuery) Source {
	return Source{
		Name:   "gdelt:" + q.Query,
		Kind:   KindNews,
		Series: q.Series,
		Request: func(now time.Time) (upstream.Request, error) {
			since := now.Add(-time.Duration(q.HoursBack) * time.Hour)
			return upstream.GDELTArticlesRequest(baseURL, q.Query, since, q.MaxRecords), nil
		},
		Normalizer: normalize.ArticleList{Classifier: classify.Default},
	}
}

func feedSource(feedURL, series string, limit int) Source {
	n := normalize.Feed{FeedURL: feedURL, Limit: limit, Classifier: classify.Default}
	return Source{
		Name:   "rss:" + feedURL,
		Kind:   KindNews,
		Series: series,
		Request: func(time.Time) (upstream.Request, error) {
			return upstream.FeedRequest(feedURL, n.Validate), nil
		},
		Normalizer: n,
	}
}

func (s Source) String() string {
	return fmt.Sprintf("%s (%s -> %s)", s.Name, s.Kind, s.Series)
}
