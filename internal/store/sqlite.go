package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/rickgao/gas-market-data/internal/model"
)

var _ Store = (*SQLite)(nil)

// SQLite is the embedded Store backend.
type SQLite struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
	stats  statsCounter
}

// NewSQLite wraps an open database. Call Migrate before use.
func NewSQLite(db *sql.DB, logger *slog.Logger) *SQLite {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLite{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// Migrate creates tables and indexes if they do not exist.
func (s *SQLite) Migrate(ctx context.Context) error {
	for _, stmt := range sqliteSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return &Error{Op: "migrate", Err: err}
		}
	}
	return nil
}

// UpsertPrices implements Store.
func (s *SQLite) UpsertPrices(ctx context.Context, series string, points []model.PricePoint) (int, error) {
	if len(points) == 0 {
		return 0, nil
	}
	now := s.now().UnixMilli()

	err := s.inTx(ctx, sqliteUpsertPrice, func(stmt *sql.Stmt) error {
		for _, p := range points {
			if _, err := stmt.ExecContext(ctx, series, p.TimestampMs, p.Price, p.Source, now); err != nil {
				return fmt.Errorf("upsert price %s@%d: %w", series, p.TimestampMs, err)
			}
		}
		return nil
	})
	if err != nil {
		s.stats.failed()
		return 0, &Error{Op: "upsert prices", Err: err}
	}

	s.stats.committed(len(points))
	s.logger.Debug("upserted prices", "series", series, "count", len(points))
	return len(points), nil
}

// UpsertNews implements Store.
func (s *SQLite) UpsertNews(ctx context.Context, series string, events []model.NewsEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}
	now := s.now().UnixMilli()

	err := s.inTx(ctx, sqliteUpsertNews, func(stmt *sql.Stmt) error {
		for _, e := range events {
			if _, err := stmt.ExecContext(ctx, e.ID, series, e.TimestampMs, string(e.Category), e.Source, e.Title, e.URL, now); err != nil {
				return fmt.Errorf("upsert news %s: %w", e.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		s.stats.failed()
		return 0, &Error{Op: "upsert news", Err: err}
	}

	s.stats.committed(len(events))
	s.logger.Debug("upserted news", "series", series, "count", len(events))
	return len(events), nil
}

// inTx runs fn with query prepared inside a single transaction.
func (s *SQLite) inTx(ctx context.Context, query string, fn func(*sql.Stmt) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	if err := fn(stmt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// MaxTimestamp implements Store.
func (s *SQLite) MaxTimestamp(ctx context.Context, table Table, series string) (int64, bool, error) {
	if !table.Valid() {
		return 0, false, &Error{Op: "max timestamp", Err: fmt.Errorf("unknown table %q", table)}
	}

	var ts sql.NullInt64
	err := s.db.QueryRowContext(ctx, "SELECT MAX(t_ms) FROM "+string(table)+" WHERE series = ?", series).Scan(&ts)
	if err != nil {
		return 0, false, &Error{Op: "max timestamp", Err: err}
	}
	return ts.Int64, ts.Valid, nil
}

// Prices implements Store.
func (s *SQLite) Prices(ctx context.Context, series string, tmin, tmax int64) ([]model.PricePoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT series, t_ms, price, source, inserted_at_ms
		FROM prices
		WHERE series = ? AND t_ms BETWEEN ? AND ?
		ORDER BY t_ms ASC`, series, tmin, tmax)
	if err != nil {
		return nil, &Error{Op: "query prices", Err: err}
	}
	defer rows.Close()

	out := []model.PricePoint{}
	for rows.Next() {
		var p model.PricePoint
		if err := rows.Scan(&p.Series, &p.TimestampMs, &p.Price, &p.Source, &p.InsertedAtMs); err != nil {
			return nil, &Error{Op: "scan prices", Err: err}
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Op: "query prices", Err: err}
	}
	return out, nil
}

// News implements Store.
func (s *SQLite) News(ctx context.Context, series string, tmin, tmax int64) ([]model.NewsEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, series, t_ms, category, source, title, url, inserted_at_ms
		FROM news
		WHERE series = ? AND t_ms BETWEEN ? AND ?
		ORDER BY t_ms ASC, id ASC`, series, tmin, tmax)
	if err != nil {
		return nil, &Error{Op: "query news", Err: err}
	}
	defer rows.Close()

	out := []model.NewsEvent{}
	for rows.Next() {
		var (
			e        model.NewsEvent
			category string
		)
		if err := rows.Scan(&e.ID, &e.Series, &e.TimestampMs, &category, &e.Source, &e.Title, &e.URL, &e.InsertedAtMs); err != nil {
			return nil, &Error{Op: "scan news", Err: err}
		}
		e.Category = model.Category(category)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Op: "query news", Err: err}
	}
	return out, nil
}

// Ping verifies the database is reachable.
func (s *SQLite) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &Error{Op: "ping", Err: err}
	}
	return nil
}

// Stats returns write counters.
func (s *SQLite) Stats() Stats {
	return s.stats.snapshot()
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
