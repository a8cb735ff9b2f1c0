package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/gas-market-data/internal/model"
	"github.com/rickgao/gas-market-data/internal/store"
	"github.com/rickgao/gas-market-data/internal/upstream"
)

// ErrRunInProgress is returned by Run while another run is active.
var ErrRunInProgress = errors.New("ingestion run already in progress")

// Fetcher retrieves upstream documents. Implemented by *upstream.Client.
type Fetcher interface {
	Fetch(ctx context.Context, req upstream.Request) (*upstream.Response, error)
}

// Writer is the subset of store.Store used by ingestion.
type Writer interface {
	UpsertPrices(ctx context.Context, series string, points []model.PricePoint) (int, error)
	UpsertNews(ctx context.Context, series string, events []model.NewsEvent) (int, error)
}

// Recorder receives ingestion metrics. Implemented by *metrics.Metrics.
type Recorder interface {
	AddRows(table, source string, n int)
	SourceFailed(source string)
	ObserveRun(d time.Duration, ok bool)
}

// Config holds runner settings.
type Config struct {
	Concurrency int           // Sources fetched in parallel
	Timeout     time.Duration // Whole run; 0 means no deadline
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Concurrency: 4,
		Timeout:     10 * time.Minute,
	}
}

// SourceReport is the outcome of one source task.
type SourceReport struct {
	Name     string  `json:"name"`
	Kind     Kind    `json:"kind"`
	Series   string  `json:"series"`
	OK       bool    `json:"ok"`
	Rows     int     `json:"rows"`
	Dropped  int     `json:"dropped"`
	Retries  int     `json:"retries"`
	Error    string  `json:"error,omitempty"`
	Duration float64 `json:"elapsedSeconds"`

	err error
}

// Report summarizes an ingestion run.
type Report struct {
	RunID          string         `json:"runId"`
	OK             bool           `json:"ok"`
	PricesIngested int            `json:"pricesIngested"`
	NewsIngested   int            `json:"newsIngested"`
	ElapsedSeconds float64        `json:"elapsedSeconds"`
	Sources        []SourceReport `json:"sources"`
}

// Failed returns the reports of sources that did not succeed.
func (r *Report) Failed() []SourceReport {
	var out []SourceReport
	for _, s := range r.Sources {
		if !s.OK {
			out = append(out, s)
		}
	}
	return out
}

// Runner executes ingestion runs. At most one run is active at a time.
type Runner struct {
	cfg      Config
	fetcher  Fetcher
	store    Writer
	sources  []Source
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time

	running atomic.Bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRecorder reports rows, failures and run durations to rec.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) {
		r.recorder = rec
	}
}

// WithClock replaces time.Now. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// NewRunner creates a Runner over sources.
func NewRunner(cfg Config, fetcher Fetcher, w Writer, sources []Source, opts ...Option) *Runner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	r := &Runner{
		cfg:     cfg,
		fetcher: fetcher,
		store:   w,
		sources: sources,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Sources returns the configured sources.
func (r *Runner) Sources() []Source {
	return r.sources
}

// Run ingests every source once.
//
// The report is always returned once the run has started. A source failure
// only marks that source and the report as not OK. The error is non-nil
// when a store write failed, joining every store error of the run, or
// ErrRunInProgress when another run is active.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer r.running.Store(false)

	start := r.now()
	runID := uuid.NewString()
	logger := r.logger.With("run_id", runID)

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	logger.Info("ingestion run started", "sources", len(r.sources), "concurrency", r.cfg.Concurrency)

	reports := make([]SourceReport, len(r.sources))

	var g errgroup.Group
	g.SetLimit(r.cfg.Concurrency)
	for i, src := range r.sources {
		g.Go(func() error {
			reports[i] = r.runSource(ctx, logger, src, start)
			return nil
		})
	}
	g.Wait()

	report := &Report{
		RunID:   runID,
		OK:      true,
		Sources: reports,
	}

	var storeErrs []error
	for _, sr := range reports {
		if !sr.OK {
			report.OK = false
			var serr *store.Error
			if errors.As(sr.err, &serr) {
				storeErrs = append(storeErrs, fmt.Errorf("%s: %w", sr.Name, sr.err))
			}
			continue
		}
		switch sr.Kind {
		case KindPrices:
			report.PricesIngested += sr.Rows
		case KindNews:
			report.NewsIngested += sr.Rows
		}
	}

	elapsed := r.now().Sub(start)
	report.ElapsedSeconds = elapsed.Seconds()
	if r.recorder != nil {
		r.recorder.ObserveRun(elapsed, report.OK)
	}

	logger.Info("ingestion run complete",
		"ok", report.OK,
		"prices", report.PricesIngested,
		"news", report.NewsIngested,
		"failed", len(report.Failed()),
		"duration", elapsed.Round(time.Millisecond),
	)

	return report, errors.Join(storeErrs...)
}

// runSource runs fetch, normalize and upsert for one source.
func (r *Runner) runSource(ctx context.Context, logger *slog.Logger, src Source, runStart time.Time) SourceReport {
	start := r.now()
	sr := SourceReport{
		Name:   src.Name,
		Kind:   src.Kind,
		Series: model.CanonicalSeries(src.Series),
	}

	rows, dropped, retries, err := r.ingest(ctx, src, sr.Series, runStart)
	sr.Rows, sr.Dropped, sr.Retries = rows, dropped, retries
	sr.Duration = r.now().Sub(start).Seconds()

	if err != nil {
		sr.err = err
		sr.Error = err.Error()
		if r.recorder != nil {
			r.recorder.SourceFailed(src.Name)
		}
		logger.Warn("source failed",
			"source", src.Name,
			"fatal", upstream.IsFatal(err),
			"error", err,
		)
		return sr
	}

	sr.OK = true
	if r.recorder != nil {
		r.recorder.AddRows(string(src.Kind), src.Name, rows)
	}
	logger.Info("source ingested",
		"source", src.Name,
		"series", sr.Series,
		"rows", rows,
		"dropped", dropped,
		"retries", retries,
	)
	return sr
}

func (r *Runner) ingest(ctx context.Context, src Source, series string, runStart time.Time) (rows, dropped, retries int, err error) {
	req, err := src.request(runStart)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("build request: %w", err)
	}

	resp, err := r.fetcher.Fetch(ctx, req)
	if err != nil {
		return 0, 0, 0, err
	}
	retries = resp.Retries

	batch, err := src.Normalizer.Normalize(resp.Body)
	if err != nil {
		return 0, 0, retries, fmt.Errorf("normalize: %w", err)
	}
	dropped = batch.Dropped

	// A cancelled run writes nothing.
	if err := ctx.Err(); err != nil {
		return 0, dropped, retries, err
	}

	switch src.Kind {
	case KindPrices:
		rows, err = r.store.UpsertPrices(ctx, series, batch.Prices)
	case KindNews:
		rows, err = r.store.UpsertNews(ctx, series, batch.News)
	default:
		err = fmt.Errorf("unknown source kind %q", src.Kind)
	}
	return rows, dropped, retries, err
}
