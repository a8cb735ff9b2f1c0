// Package httpapi exposes windowed price and news reads, a manual ingestion
// trigger, health and metrics over HTTP.
package httpapi
