// Package store persists price points and news events.
//
// Tables:
//   - prices: one row per (series, t_ms); re-ingestion replaces price and source
//   - news: one row per id; re-ingestion replaces every column
//
// Each upsert call writes its whole batch in one transaction. A failure rolls
// the batch back and returns *Error; readers never see a partial batch.
//
// Two backends share the schema: SQLite (default) and PostgreSQL.
package store
