package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rickgao/gas-market-data/internal/model"
)

var _ Store = (*Postgres)(nil)

// Pool is the subset of *pgxpool.Pool used by Postgres.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Postgres is the PostgreSQL Store backend.
type Postgres struct {
	pool   Pool
	logger *slog.Logger
	now    func() time.Time
	stats  statsCounter
}

// NewPostgres wraps a connection pool. Call Migrate before use.
func NewPostgres(pool Pool, logger *slog.Logger) *Postgres {
	if logger == nil {
		logger = slog.Default()
	}
	return &Postgres{
		pool:   pool,
		logger: logger,
		now:    time.Now,
	}
}

// Migrate creates tables and indexes if they do not exist.
func (s *Postgres) Migrate(ctx context.Context) error {
	for _, stmt := range postgresSchema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return &Error{Op: "migrate", Err: err}
		}
	}
	return nil
}

// UpsertPrices implements Store.
func (s *Postgres) UpsertPrices(ctx context.Context, series string, points []model.PricePoint) (int, error) {
	if len(points) == 0 {
		return 0, nil
	}
	now := s.now().UnixMilli()

	batch := &pgx.Batch{}
	for _, p := range points {
		batch.Queue(postgresUpsertPrice, series, p.TimestampMs, p.Price, p.Source, now)
	}

	if err := s.sendInTx(ctx, batch); err != nil {
		s.stats.failed()
		return 0, &Error{Op: "upsert prices", Err: err}
	}

	s.stats.committed(len(points))
	s.logger.Debug("upserted prices", "series", series, "count", len(points))
	return len(points), nil
}

// UpsertNews implements Store.
func (s *Postgres) UpsertNews(ctx context.Context, series string, events []model.NewsEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}
	now := s.now().UnixMilli()

	batch := &pgx.Batch{}
	for _, e := range events {
		batch.Queue(postgresUpsertNews, e.ID, series, e.TimestampMs, string(e.Category), e.Source, e.Title, e.URL, now)
	}

	if err := s.sendInTx(ctx, batch); err != nil {
		s.stats.failed()
		return 0, &Error{Op: "upsert news", Err: err}
	}

	s.stats.committed(len(events))
	s.logger.Debug("upserted news", "series", series, "count", len(events))
	return len(events), nil
}

// sendInTx executes every queued statement inside one transaction.
func (s *Postgres) sendInTx(ctx context.Context, batch *pgx.Batch) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("batch statement %d: %w", i, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// MaxTimestamp implements Store.
func (s *Postgres) MaxTimestamp(ctx context.Context, table Table, series string) (int64, bool, error) {
	if !table.Valid() {
		return 0, false, &Error{Op: "max timestamp", Err: fmt.Errorf("unknown table %q", table)}
	}

	var ts *int64
	err := s.pool.QueryRow(ctx, "SELECT MAX(t_ms) FROM "+string(table)+" WHERE series = $1", series).Scan(&ts)
	if err != nil {
		return 0, false, &Error{Op: "max timestamp", Err: err}
	}
	if ts == nil {
		return 0, false, nil
	}
	return *ts, true, nil
}

// Prices implements Store.
func (s *Postgres) Prices(ctx context.Context, series string, tmin, tmax int64) ([]model.PricePoint, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT series, t_ms, price, source, inserted_at_ms
		FROM prices
		WHERE series = $1 AND t_ms BETWEEN $2 AND $3
		ORDER BY t_ms ASC`, series, tmin, tmax)
	if err != nil {
		return nil, &Error{Op: "query prices", Err: err}
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.PricePoint, error) {
		var p model.PricePoint
		err := row.Scan(&p.Series, &p.TimestampMs, &p.Price, &p.Source, &p.InsertedAtMs)
		return p, err
	})
	if err != nil {
		return nil, &Error{Op: "query prices", Err: err}
	}
	if out == nil {
		out = []model.PricePoint{}
	}
	return out, nil
}

// News implements Store.
func (s *Postgres) News(ctx context.Context, series string, tmin, tmax int64) ([]model.NewsEvent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, series, t_ms, category, source, title, url, inserted_at_ms
		FROM news
		WHERE series = $1 AND t_ms BETWEEN $2 AND $3
		ORDER BY t_ms ASC, id ASC`, series, tmin, tmax)
	if err != nil {
		return nil, &Error{Op: "query news", Err: err}
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.NewsEvent, error) {
		var (
			e        model.NewsEvent
			category string
		)
		err := row.Scan(&e.ID, &e.Series, &e.TimestampMs, &category, &e.Source, &e.Title, &e.URL, &e.InsertedAtMs)
		e.Category = model.Category(category)
		return e, err
	})
	if err != nil {
		return nil, &Error{Op: "query news", Err: err}
	}
	if out == nil {
		out = []model.NewsEvent{}
	}
	return out, nil
}

// Ping verifies the pool is healthy.
func (s *Postgres) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return &Error{Op: "ping", Err: err}
	}
	return nil
}

// Stats returns write counters.
func (s *Postgres) Stats() Stats {
	return s.stats.snapshot()
}

// Close closes the pool.
func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}
