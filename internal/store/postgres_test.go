package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rickgao/gas-market-data/internal/model"
)

// fakePool hands out fakeTx transactions. Methods not overridden panic
// through the nil embedded interface.
type fakePool struct {
	Pool
	beginErr error
	tx       *fakeTx
	begins   int
}

func (p *fakePool) Begin(ctx context.Context) (pgx.Tx, error) {
	p.begins++
	if p.beginErr != nil {
		return nil, p.beginErr
	}
	return p.tx, nil
}

type fakeTx struct {
	pgx.Tx
	failAt    int // statement index that fails; -1 for none
	commitErr error

	queued     int
	executed   int
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	tx.queued = b.Len()
	return &fakeResults{tx: tx}
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	if tx.commitErr != nil {
		return tx.commitErr
	}
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	if !tx.committed {
		tx.rolledBack = true
	}
	return nil
}

type fakeResults struct {
	pgx.BatchResults
	tx *fakeTx
}

func (r *fakeResults) Exec() (pgconn.CommandTag, error) {
	i := r.tx.executed
	r.tx.executed++
	if i == r.tx.failAt {
		return pgconn.CommandTag{}, errors.New("violates not-null constraint")
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (r *fakeResults) Close() error { return nil }

func testPoints(n int) []model.PricePoint {
	points := make([]model.PricePoint, n)
	for i := range points {
		points[i] = model.PricePoint{TimestampMs: int64(i), Price: 2.5, Source: "a"}
	}
	return points
}

func TestPostgres_UpsertPrices(t *testing.T) {
	ctx := context.Background()

	t.Run("commits one batch", func(t *testing.T) {
		tx := &fakeTx{failAt: -1}
		s := NewPostgres(&fakePool{tx: tx}, nil)

		n, err := s.UpsertPrices(ctx, model.SeriesHenryHubSpot, testPoints(3))
		if err != nil || n != 3 {
			t.Fatalf("UpsertPrices = (%d, %v), want (3, nil)", n, err)
		}
		if tx.queued != 3 || tx.executed != 3 {
			t.Errorf("queued/executed = %d/%d, want 3/3", tx.queued, tx.executed)
		}
		if !tx.committed || tx.rolledBack {
			t.Errorf("committed = %v rolledBack = %v, want true false", tx.committed, tx.rolledBack)
		}
		if got := s.Stats(); got.Batches != 1 || got.Rows != 3 {
			t.Errorf("Stats = %+v, want 1 batch / 3 rows", got)
		}
	})

	t.Run("failed statement rolls back", func(t *testing.T) {
		tx := &fakeTx{failAt: 1}
		s := NewPostgres(&fakePool{tx: tx}, nil)

		n, err := s.UpsertPrices(ctx, model.SeriesHenryHubSpot, testPoints(3))
		var storeErr *Error
		if !errors.As(err, &storeErr) {
			t.Fatalf("expected *Error, got %T: %v", err, err)
		}
		if n != 0 {
			t.Errorf("n = %d, want 0", n)
		}
		if tx.committed || !tx.rolledBack {
			t.Errorf("committed = %v rolledBack = %v, want false true", tx.committed, tx.rolledBack)
		}
		if got := s.Stats(); got.Errors != 1 || got.Rows != 0 {
			t.Errorf("Stats = %+v, want 1 error / 0 rows", got)
		}
	})

	t.Run("commit error", func(t *testing.T) {
		tx := &fakeTx{failAt: -1, commitErr: errors.New("connection reset")}
		s := NewPostgres(&fakePool{tx: tx}, nil)

		if _, err := s.UpsertPrices(ctx, model.SeriesHenryHubSpot, testPoints(2)); err == nil {
			t.Fatal("expected error")
		}
		if !tx.rolledBack {
			t.Error("transaction should be rolled back")
		}
	})

	t.Run("begin error", func(t *testing.T) {
		s := NewPostgres(&fakePool{beginErr: errors.New("pool closed")}, nil)
		if _, err := s.UpsertPrices(ctx, model.SeriesHenryHubSpot, testPoints(1)); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("empty batch", func(t *testing.T) {
		pool := &fakePool{tx: &fakeTx{failAt: -1}}
		s := NewPostgres(pool, nil)
		if n, err := s.UpsertPrices(ctx, model.SeriesHenryHubSpot, nil); err != nil || n != 0 {
			t.Errorf("UpsertPrices(nil) = (%d, %v), want (0, nil)", n, err)
		}
		if pool.begins != 0 {
			t.Errorf("begins = %d, want 0", pool.begins)
		}
	})
}

func TestPostgres_UpsertNews(t *testing.T) {
	tx := &fakeTx{failAt: 0}
	s := NewPostgres(&fakePool{tx: tx}, nil)

	events := []model.NewsEvent{{ID: "rss_a", TimestampMs: 1, Category: model.CategoryLNG, Source: "x", Title: "t", URL: "u"}}
	_, err := s.UpsertNews(context.Background(), model.SeriesHenryHubSpot, events)
	var storeErr *Error
	if !errors.As(err, &storeErr) || storeErr.Op != "upsert news" {
		t.Fatalf("error = %v, want *Error with Op upsert news", err)
	}
	if tx.committed {
		t.Error("failed batch was committed")
	}
}

func TestPostgres_MaxTimestampUnknownTable(t *testing.T) {
	s := NewPostgres(&fakePool{}, nil)
	if _, _, err := s.MaxTimestamp(context.Background(), Table("users"), "x"); err == nil {
		t.Error("expected error for unknown table")
	}
}
