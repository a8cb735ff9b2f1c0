// Package sample generates synthetic prices and headlines for local
// development and demos.
package sample

import (
	"cmp"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strconv"
	"time"

	"github.com/rickgao/gas-market-data/internal/model"
	"github.com/rickgao/gas-market-data/internal/normalize"
	"github.com/rickgao/gas-market-data/internal/query"
)

// Source is the provenance recorded on generated rows.
const Source = "sample"

// PrefixSample namespaces generated news ids.
const PrefixSample = "sample"

const (
	meanPrice  = 2.75
	floorPrice = 1.5
	reversion  = 0.002
)

// Headline is a canned news item.
type Headline struct {
	Category model.Category
	Source   string
	Title    string
}

// Headlines are cycled through by News.
var Headlines = []Headline{
	{model.CategoryLNG, "Reuters", "Freeport LNG output declines amid operational issue"},
	{model.CategoryWeather, "NOAA", "Colder-than-normal forecast lifts heating demand expectations"},
	{model.CategoryStorage, "EIA", "Weekly storage report surprises vs consensus estimates"},
	{model.CategoryOutages, "Pipeline Notice", "Major pipeline maintenance reduces capacity temporarily"},
	{model.CategoryPolicy, "DOE", "Regulatory update prompts reassessment of LNG export outlook"},
	{model.CategoryMacro, "WSJ", "Risk sentiment shifts across commodities amid rate expectations"},
	{model.CategoryLNG, "Bloomberg", "European gas firm; US LNG netbacks improve"},
	{model.CategoryOther, "Industry", "Producer commentary highlights basin constraints into Q1"},
	{model.CategoryWeather, "Private Met Desk", "HDD forecast revision increases near-term demand risk"},
	{model.CategoryStorage, "Analyst Note", "Storage tightness narrative returns as injections lag average"},
}

// Prices returns a mean-reverting random walk covering the token's window
// and ending just before now. Ranges up to five days get 48 points a day,
// longer ranges 24.
func Prices(series, token string, now time.Time, rng *rand.Rand) []model.PricePoint {
	days := query.Days(token)
	perDay := 24
	if days <= 5 {
		perDay = 48
	}
	start := meanPrice
	if model.CanonicalSeries(series) == model.SeriesHenryHubSpot {
		start = 2.55
	}

	n := days * perDay
	step := query.DayMs / int64(perDay)
	t0 := now.UnixMilli() - int64(days)*query.DayMs

	p := start
	out := make([]model.PricePoint, n)
	for i := range out {
		drift := (meanPrice - p) * reversion
		vol := 0.015 + 0.01*math.Sin(2*math.Pi*float64(i)/float64(perDay*7))
		p = math.Max(floorPrice, p+drift+vol*rng.NormFloat64())
		out[i] = model.PricePoint{
			TimestampMs: t0 + int64(i)*step,
			Price:       p,
			Source:      Source,
		}
	}
	return out
}

// News returns max(10, days/3) headlines at random times inside the span
// of prices, ascending by timestamp. Fewer than two prices yield nil.
func News(token string, prices []model.PricePoint, rng *rand.Rand) []model.NewsEvent {
	if len(prices) < 2 {
		return nil
	}
	count := max(10, query.Days(token)/3)

	tmin := prices[0].TimestampMs
	tmax := prices[len(prices)-1].TimestampMs

	out := make([]model.NewsEvent, count)
	for i := range out {
		h := Headlines[i%len(Headlines)]
		t := tmin + int64(rng.Float64()*float64(tmax-tmin))
		out[i] = model.NewsEvent{
			ID:          normalize.NewsID(PrefixSample, strconv.FormatInt(t, 10), fmt.Sprintf("#%d", i)),
			TimestampMs: t,
			Category:    h.Category,
			Source:      h.Source,
			Title:       h.Title,
			URL:         "#",
		}
	}

	slices.SortStableFunc(out, func(a, b model.NewsEvent) int {
		return cmp.Compare(a.TimestampMs, b.TimestampMs)
	})
	return out
}
