package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rickgao/gas-market-data/internal/ingest"
)

// Runner executes one ingestion run. Implemented by *ingest.Runner.
type Runner interface {
	Run(ctx context.Context) (*ingest.Report, error)
}

// RunnerFunc is a function adapter for Runner.
type RunnerFunc func(context.Context) (*ingest.Report, error)

func (f RunnerFunc) Run(ctx context.Context) (*ingest.Report, error) {
	return f(ctx)
}

// Config holds poller configuration.
type Config struct {
	Interval time.Duration // Time between runs (default: 10m)
	Timeout  time.Duration // Per-run timeout (default: 10m)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 10 * time.Minute,
		Timeout:  10 * time.Minute,
	}
}

// Poller periodically runs ingestion.
type Poller struct {
	cfg    Config
	runner Runner
	logger *slog.Logger

	runs    atomic.Int64
	skipped atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller.
func New(cfg Config, runner Runner, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	return &Poller{
		cfg:    cfg,
		runner: runner,
		logger: logger,
	}
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("ingest poller started",
		"interval", p.cfg.Interval,
		"timeout", p.cfg.Timeout,
	)

	return nil
}

// Stop cancels any active run and waits for the loop to exit.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("ingest poller stopped", "runs", p.runs.Load(), "skipped", p.skipped.Load())
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Runs returns the number of completed runs.
func (p *Poller) Runs() int64 {
	return p.runs.Load()
}

// run is the main polling loop.
func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Poll immediately on start.
	p.poll()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.poll()
		}
	}
}

// poll executes one run.
func (p *Poller) poll() {
	ctx := p.ctx
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(p.ctx, p.cfg.Timeout)
		defer cancel()
	}

	report, err := p.runner.Run(ctx)
	if errors.Is(err, ingest.ErrRunInProgress) {
		p.skipped.Add(1)
		p.logger.Debug("ingestion already running, skipping tick")
		return
	}
	p.runs.Add(1)

	if err != nil {
		p.logger.Error("scheduled ingestion failed", "error", err)
		return
	}
	if report != nil && !report.OK {
		p.logger.Warn("scheduled ingestion incomplete",
			"run_id", report.RunID,
			"failed_sources", len(report.Failed()),
		)
	}
}
