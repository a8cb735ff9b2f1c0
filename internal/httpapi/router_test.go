package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/rickgao/gas-market-data/internal/ingest"
	"github.com/rickgao/gas-market-data/internal/metrics"
	"github.com/rickgao/gas-market-data/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeQuerier struct {
	prices []model.PricePoint
	news   []model.NewsEvent
	err    error

	lastSeries, lastToken string
}

func (f *fakeQuerier) Prices(ctx context.Context, series, token string) ([]model.PricePoint, error) {
	f.lastSeries, f.lastToken = series, token
	return f.prices, f.err
}

func (f *fakeQuerier) News(ctx context.Context, series, token string) ([]model.NewsEvent, error) {
	f.lastSeries, f.lastToken = series, token
	return f.news, f.err
}

type ingestFunc func(ctx context.Context) (*ingest.Report, error)

func (f ingestFunc) Run(ctx context.Context) (*ingest.Report, error) { return f(ctx) }

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func serve(t *testing.T, r http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestPrices(t *testing.T) {
	q := &fakeQuerier{prices: []model.PricePoint{
		{TimestampMs: 1000, Price: 2.5},
		{TimestampMs: 2000, Price: 2.6},
	}}
	r := NewRouter(Deps{Query: q})

	rec := serve(t, r, http.MethodGet, "/api/prices?series=NG_FUTURES&range=5D")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}

	var got []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0]["t"] != float64(1000) || got[0]["p"] != 2.5 {
		t.Errorf("got[0] = %v, want {t:1000 p:2.5}", got[0])
	}
	if len(got[0]) != 2 {
		t.Errorf("price point has extra fields: %v", got[0])
	}
	if q.lastSeries != model.SeriesNGFutures || q.lastToken != "5D" {
		t.Errorf("query args = (%s, %s), want (NG_FUTURES, 5D)", q.lastSeries, q.lastToken)
	}
}

func TestPrices_Defaults(t *testing.T) {
	q := &fakeQuerier{prices: []model.PricePoint{}}
	r := NewRouter(Deps{Query: q})

	rec := serve(t, r, http.MethodGet, "/api/prices")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("body = %s, want []", rec.Body)
	}
	if q.lastSeries != model.SeriesHenryHubSpot || q.lastToken != "1M" {
		t.Errorf("defaults = (%s, %s), want (HENRY_HUB_SPOT, 1M)", q.lastSeries, q.lastToken)
	}
}

func TestNews(t *testing.T) {
	q := &fakeQuerier{news: []model.NewsEvent{{
		ID:          "rss_abc",
		TimestampMs: 1000,
		Category:    model.CategoryLNG,
		Source:      "eia.gov",
		Title:       "LNG exports rise",
		URL:         "https://eia.gov/a",
	}}}
	r := NewRouter(Deps{Query: q})

	rec := serve(t, r, http.MethodGet, "/api/news")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if q.lastSeries != model.SeriesNGFutures || q.lastToken != "1M" {
		t.Errorf("defaults = (%s, %s), want (NG_FUTURES, 1M)", q.lastSeries, q.lastToken)
	}

	var got []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]any{
		"id":       "rss_abc",
		"t":        float64(1000),
		"category": "LNG",
		"source":   "eia.gov",
		"title":    "LNG exports rise",
		"url":      "https://eia.gov/a",
	}
	if len(got) != 1 || len(got[0]) != len(want) {
		t.Fatalf("got = %v", got)
	}
	for k, v := range want {
		if got[0][k] != v {
			t.Errorf("%s = %v, want %v", k, got[0][k], v)
		}
	}
}

func TestReadValidation(t *testing.T) {
	r := NewRouter(Deps{Query: &fakeQuerier{}})

	tests := []string{
		"/api/prices?series=BRENT",
		"/api/prices?range=2Y",
		"/api/news?range=1m",
		"/api/news?series=",
	}
	for _, target := range tests {
		t.Run(target, func(t *testing.T) {
			rec := serve(t, r, http.MethodGet, target)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), "error") {
				t.Errorf("body = %s, want an error field", rec.Body)
			}
		})
	}
}

func TestReadError(t *testing.T) {
	r := NewRouter(Deps{Query: &fakeQuerier{err: errors.New("database is locked")}})

	rec := serve(t, r, http.MethodGet, "/api/prices")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestIngest(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r := NewRouter(Deps{Query: &fakeQuerier{}, Ingest: ingestFunc(func(ctx context.Context) (*ingest.Report, error) {
			return &ingest.Report{RunID: "run-1", OK: true, PricesIngested: 3, NewsIngested: 7, ElapsedSeconds: 1.5}, nil
		})})

		rec := serve(t, r, http.MethodPost, "/api/ingest")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var got map[string]any
		json.Unmarshal(rec.Body.Bytes(), &got)
		if got["ok"] != true || got["pricesIngested"] != float64(3) || got["newsIngested"] != float64(7) || got["elapsedSeconds"] != 1.5 {
			t.Errorf("body = %v", got)
		}
		if _, ok := got["error"]; ok {
			t.Error("successful response has an error field")
		}
	})

	t.Run("in progress", func(t *testing.T) {
		r := NewRouter(Deps{Query: &fakeQuerier{}, Ingest: ingestFunc(func(ctx context.Context) (*ingest.Report, error) {
			return nil, ingest.ErrRunInProgress
		})})

		rec := serve(t, r, http.MethodPost, "/api/ingest")
		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
	})

	t.Run("store failure keeps counts", func(t *testing.T) {
		r := NewRouter(Deps{Query: &fakeQuerier{}, Ingest: ingestFunc(func(ctx context.Context) (*ingest.Report, error) {
			return &ingest.Report{OK: false, NewsIngested: 4}, errors.New("store upsert prices: disk full")
		})})

		rec := serve(t, r, http.MethodPost, "/api/ingest")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}
		var got map[string]any
		json.Unmarshal(rec.Body.Bytes(), &got)
		if got["ok"] != false || got["newsIngested"] != float64(4) || got["error"] == nil {
			t.Errorf("body = %v", got)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		r := NewRouter(Deps{Query: &fakeQuerier{}})
		rec := serve(t, r, http.MethodPost, "/api/ingest")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		r := NewRouter(Deps{Query: &fakeQuerier{}, Health: pingFunc(func(context.Context) error { return nil })})
		if rec := serve(t, r, http.MethodGet, "/health"); rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("unhealthy", func(t *testing.T) {
		r := NewRouter(Deps{Query: &fakeQuerier{}, Health: pingFunc(func(context.Context) error { return errors.New("closed") })})
		rec := serve(t, r, http.MethodGet, "/health")
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "unhealthy") {
			t.Errorf("body = %s", rec.Body)
		}
	})
}

func TestCORS(t *testing.T) {
	r := NewRouter(Deps{Query: &fakeQuerier{}})

	rec := serve(t, r, http.MethodGet, "/api/prices")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}

	pre := serve(t, r, http.MethodOptions, "/api/prices")
	if pre.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", pre.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	r := NewRouter(Deps{Query: &fakeQuerier{prices: []model.PricePoint{}}, Metrics: m, MetricsPath: "/metrics"})

	serve(t, r, http.MethodGet, "/api/prices")

	rec := serve(t, r, http.MethodGet, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `gasdata_api_requests_total{code="200",route="/api/prices"} 1`) {
		t.Errorf("metrics output missing api request counter:\n%s", rec.Body)
	}
}

func TestIngestRunsDetached(t *testing.T) {
	var cancelled atomic.Bool
	r := NewRouter(Deps{Query: &fakeQuerier{}, Ingest: ingestFunc(func(ctx context.Context) (*ingest.Report, error) {
		cancelled.Store(ctx.Done() != nil)
		return &ingest.Report{OK: true}, nil
	})})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/ingest", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if cancelled.Load() {
		t.Error("ingest context should not carry the request's cancellation")
	}
}
