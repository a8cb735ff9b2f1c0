// Package ingest runs the fetch, normalize and upsert pipeline for every
// configured upstream source.
//
// Each source is an independent task. Tasks run concurrently up to a
// configured limit, share nothing but the store, and commit their batch in
// a single transaction. A failing source is reported but never cancels its
// siblings.
package ingest
