// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Upstream request and retry counts per host
//   - Rows ingested per table and source
//   - Source failures and ingestion run duration
//   - API requests per route and status
//
// Collectors live on a private registry served by Handler. All methods are
// safe to call on a nil *Metrics.
package metrics
