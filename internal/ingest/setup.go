package ingest

import (
	"log/slog"

	"github.com/rickgao/gas-market-data/internal/config"
	"github.com/rickgao/gas-market-data/internal/metrics"
	"github.com/rickgao/gas-market-data/internal/upstream"
)

// NewClient builds the upstream client from cfg. m may be nil.
func NewClient(cfg config.UpstreamConfig, m *metrics.Metrics, logger *slog.Logger) *upstream.Client {
	opts := []upstream.ClientOption{
		upstream.WithLogger(logger),
		upstream.WithTimeout(cfg.Timeout),
		upstream.WithMaxAttempts(cfg.MaxAttempts),
		upstream.WithPoliteness(cfg.PolitenessDelay),
		upstream.WithUserAgent(cfg.UserAgent),
	}
	if m != nil {
		opts = append(opts, upstream.WithObserver(m))
	}
	return upstream.NewClient(opts...)
}

// FromConfig wires a Runner for every source enabled in cfg. m may be nil.
func FromConfig(cfg *config.Config, w Writer, m *metrics.Metrics, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	opts := []Option{WithLogger(logger)}
	if m != nil {
		opts = append(opts, WithRecorder(m))
	}

	return NewRunner(
		Config{Concurrency: cfg.Ingest.Concurrency, Timeout: cfg.Ingest.Timeout},
		NewClient(cfg.Upstream, m, logger),
		w,
		BuildSources(cfg.Sources),
		opts...,
	)
}
