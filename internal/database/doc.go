// Package database opens connections for the store backends.
//
// Backends:
//   - SQLite (default): a single embedded file, WAL journal, synchronous=NORMAL,
//     busy timeout, immediate write transactions (modernc.org/sqlite, no cgo)
//   - PostgreSQL: a pgx connection pool for shared deployments
package database
