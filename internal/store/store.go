package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rickgao/gas-market-data/internal/config"
	"github.com/rickgao/gas-market-data/internal/database"
	"github.com/rickgao/gas-market-data/internal/model"
)

// Table names a time-series table.
type Table string

const (
	TablePrices Table = "prices"
	TableNews   Table = "news"
)

// Valid reports whether t is a known table.
func (t Table) Valid() bool {
	return t == TablePrices || t == TableNews
}

// Store is the time-series persistence layer.
type Store interface {
	// UpsertPrices writes points under series and returns the number of
	// rows submitted. PricePoint.Series is ignored.
	UpsertPrices(ctx context.Context, series string, points []model.PricePoint) (int, error)

	// UpsertNews writes events under series and returns the number of
	// rows submitted. NewsEvent.Series is ignored.
	UpsertNews(ctx context.Context, series string, events []model.NewsEvent) (int, error)

	// MaxTimestamp returns the largest t_ms stored for series in table.
	// ok is false when the series has no rows.
	MaxTimestamp(ctx context.Context, table Table, series string) (ts int64, ok bool, err error)

	// Prices returns rows with tmin <= t_ms <= tmax in ascending order.
	Prices(ctx context.Context, series string, tmin, tmax int64) ([]model.PricePoint, error)

	// News returns rows with tmin <= t_ms <= tmax in ascending order.
	News(ctx context.Context, series string, tmin, tmax int64) ([]model.NewsEvent, error)

	Ping(ctx context.Context) error
	Stats() Stats
	Close() error
}

// Error wraps a failed store operation.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Stats holds write counters for a store.
type Stats struct {
	Rows    int64 // Rows submitted in committed batches
	Batches int64 // Committed batches
	Errors  int64 // Rolled back batches
}

// statsCounter guards Stats.
type statsCounter struct {
	mu    sync.Mutex
	stats Stats
}

func (c *statsCounter) committed(rows int) {
	c.mu.Lock()
	c.stats.Rows += int64(rows)
	c.stats.Batches++
	c.mu.Unlock()
}

func (c *statsCounter) failed() {
	c.mu.Lock()
	c.stats.Errors++
	c.mu.Unlock()
}

func (c *statsCounter) snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Open connects to the configured backend and creates the schema.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Driver {
	case "", "sqlite":
		db, err := database.OpenSQLite(ctx, cfg.Path, cfg.BusyTimeout)
		if err != nil {
			return nil, &Error{Op: "open", Err: err}
		}
		s := NewSQLite(db, logger)
		if err := s.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("store opened", "driver", "sqlite", "path", cfg.Path)
		return s, nil

	case "postgres":
		pool, err := database.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, &Error{Op: "open", Err: err}
		}
		s := NewPostgres(pool, logger)
		if err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("store opened", "driver", "postgres", "host", cfg.Postgres.Host, "database", cfg.Postgres.Name)
		return s, nil
	}

	return nil, &Error{Op: "open", Err: fmt.Errorf("unknown driver %q", cfg.Driver)}
}
