// Package poller schedules ingestion runs.
//
// The poller:
//   - Runs one ingestion immediately on start, then every interval
//   - Bounds each run with its own timeout
//   - Skips a tick while a manually triggered run is still active
package poller
