// Package upstream provides the HTTP client used to pull documents from
// rate-limited public data sources.
//
// Sources:
//   - EIA API v2: https://api.eia.gov/v2/seriesid/{series_id}
//   - GDELT DOC 2.0: https://api.gdeltproject.org/api/v2/doc/doc
//   - RSS/Atom feeds (EIA, NOAA/NHC, Google News search)
//
// Retry policy:
//   - 429, 500, 502, 503, 504: retry after Retry-After, or min(60, 2^n)+U(0,1) seconds
//   - other non-2xx: fail immediately with *UpstreamError
//   - 2xx with a body the caller cannot parse: retry with backoff
//   - transport errors: retry with backoff unless the context is done
//
// Each request first waits on a per-host limiter so consecutive calls to the
// same host are spaced by the configured politeness delay.
package upstream
