package model

// Series labels.
const (
	SeriesHenryHubSpot = "HENRY_HUB_SPOT"
	SeriesNGFutures    = "NG_FUTURES"
)

// seriesAliases maps a requested or ingested label to the label rows are
// stored under. NG_FUTURES has no feed of its own yet, so it reads and writes
// the Henry Hub spot partition.
var seriesAliases = map[string]string{
	SeriesNGFutures: SeriesHenryHubSpot,
}

// KnownSeries lists the labels accepted by the read API.
var KnownSeries = []string{SeriesHenryHubSpot, SeriesNGFutures}

// CanonicalSeries returns the storage label for name.
// Both the ingest and query paths resolve labels through this function.
func CanonicalSeries(name string) string {
	if alias, ok := seriesAliases[name]; ok {
		return alias
	}
	return name
}

// IsKnownSeries reports whether name is an accepted series label.
func IsKnownSeries(name string) bool {
	for _, s := range KnownSeries {
		if s == name {
			return true
		}
	}
	return false
}
