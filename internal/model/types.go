package model

// -----------------------------------------------------------------------------
// Time-Series Types
// -----------------------------------------------------------------------------

// PricePoint is one observation of a price series.
// (Series, TimestampMs) is unique in storage.
type PricePoint struct {
	Series       string  // Partition label (e.g., "HENRY_HUB_SPOT")
	TimestampMs  int64   // Observation time (ms since epoch)
	Price        float64 // Finite price value
	Source       string  // Provenance label (e.g., "EIA:NG.RNGWHHD.D")
	InsertedAtMs int64   // Last write time (ms since epoch), set by the store
}

// NewsEvent is one categorized headline.
type NewsEvent struct {
	ID           string   // Source prefix + sha1(rawPublished|url)
	Series       string   // Partition label
	TimestampMs  int64    // Publication time (ms since epoch)
	Category     Category // Classifier result
	Source       string   // Publisher domain or feed host
	Title        string
	URL          string
	InsertedAtMs int64 // Last write time (ms since epoch), set by the store
}

// -----------------------------------------------------------------------------
// Categories
// -----------------------------------------------------------------------------

// Category labels a news event by market driver.
type Category string

const (
	CategoryStorage Category = "STORAGE"
	CategoryLNG     Category = "LNG"
	CategoryWeather Category = "WEATHER"
	CategoryOutages Category = "OUTAGES"
	CategorySupply  Category = "SUPPLY"
	CategoryMacro   Category = "MACRO"
	CategoryPolicy  Category = "POLICY"
	CategoryOther   Category = "OTHER"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryStorage,
	CategoryLNG,
	CategoryWeather,
	CategoryOutages,
	CategorySupply,
	CategoryMacro,
	CategoryPolicy,
	CategoryOther,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
