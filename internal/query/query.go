package query

import (
	"context"
	"fmt"

	"github.com/rickgao/gas-market-data/internal/model"
	"github.com/rickgao/gas-market-data/internal/store"
)

// DayMs is one day in milliseconds.
const DayMs int64 = 86_400_000

// DefaultDays is used for unknown range tokens.
const DefaultDays = 30

// DefaultRange is the token used when none is given.
const DefaultRange = "1M"

var rangeDays = map[string]int{
	"1D": 1,
	"5D": 5,
	"1M": 30,
	"3M": 90,
	"6M": 180,
	"1Y": 365,
}

// Tokens lists the supported range tokens, shortest first.
var Tokens = []string{"1D", "5D", "1M", "3M", "6M", "1Y"}

// Days returns the lookback length of token in days.
func Days(token string) int {
	if d, ok := rangeDays[token]; ok {
		return d
	}
	return DefaultDays
}

// ValidToken reports whether token is a supported range token.
func ValidToken(token string) bool {
	_, ok := rangeDays[token]
	return ok
}

// Window is an inclusive [Min, Max] range of epoch milliseconds.
type Window struct {
	Min int64
	Max int64
}

// Contains reports whether ts lies inside the window.
func (w Window) Contains(ts int64) bool {
	return ts >= w.Min && ts <= w.Max
}

// Reader is the subset of store.Store used for queries.
type Reader interface {
	MaxTimestamp(ctx context.Context, table store.Table, series string) (int64, bool, error)
	Prices(ctx context.Context, series string, tmin, tmax int64) ([]model.PricePoint, error)
	News(ctx context.Context, series string, tmin, tmax int64) ([]model.NewsEvent, error)
}

// Resolver answers windowed reads.
type Resolver struct {
	store Reader
}

// NewResolver creates a Resolver over r.
func NewResolver(r Reader) *Resolver {
	return &Resolver{store: r}
}

// ResolveWindow returns the window for series in table. ok is false when
// the series has no stored rows.
func (r *Resolver) ResolveWindow(ctx context.Context, table store.Table, series, token string) (Window, bool, error) {
	series = model.CanonicalSeries(series)

	latest, ok, err := r.store.MaxTimestamp(ctx, table, series)
	if err != nil {
		return Window{}, false, fmt.Errorf("resolve window %s/%s: %w", table, series, err)
	}
	if !ok {
		return Window{}, false, nil
	}

	return Window{
		Min: latest - int64(Days(token))*DayMs,
		Max: latest,
	}, true, nil
}

// Prices returns price points for series inside the token's window,
// ascending by timestamp. No data yields an empty slice.
func (r *Resolver) Prices(ctx context.Context, series, token string) ([]model.PricePoint, error) {
	w, ok, err := r.ResolveWindow(ctx, store.TablePrices, series, token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []model.PricePoint{}, nil
	}

	points, err := r.store.Prices(ctx, model.CanonicalSeries(series), w.Min, w.Max)
	if err != nil {
		return nil, fmt.Errorf("query prices: %w", err)
	}
	if points == nil {
		points = []model.PricePoint{}
	}
	return points, nil
}

// News returns news events for series inside the token's window,
// ascending by timestamp. No data yields an empty slice.
func (r *Resolver) News(ctx context.Context, series, token string) ([]model.NewsEvent, error) {
	w, ok, err := r.ResolveWindow(ctx, store.TableNews, series, token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []model.NewsEvent{}, nil
	}

	events, err := r.store.News(ctx, model.CanonicalSeries(series), w.Min, w.Max)
	if err != nil {
		return nil, fmt.Errorf("query news: %w", err)
	}
	if events == nil {
		events = []model.NewsEvent{}
	}
	return events, nil
}
