package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/rickgao/gas-market-data/internal/config"
	"github.com/rickgao/gas-market-data/internal/httpapi"
	"github.com/rickgao/gas-market-data/internal/ingest"
	"github.com/rickgao/gas-market-data/internal/logging"
	"github.com/rickgao/gas-market-data/internal/metrics"
	"github.com/rickgao/gas-market-data/internal/poller"
	"github.com/rickgao/gas-market-data/internal/query"
	"github.com/rickgao/gas-market-data/internal/store"
	"github.com/rickgao/gas-market-data/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults only when empty)")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before the config")
	flag.Parse()

	if err := config.LoadEnvFiles(*envFile); err != nil {
		slog.Error("failed to load env file", "error", err)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Set up structured logging
	logger, logCloser, err := logging.New(cfg.Logging)
	if err != nil {
		slog.Error("failed to set up logging", "error", err)
		os.Exit(1)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("starting server",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	st, err := store.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	runner := ingest.FromConfig(cfg, st, m, logger)
	logger.Info("ingestion configured", "sources", len(runner.Sources()))

	gin.SetMode(gin.ReleaseMode)
	router := httpapi.NewRouter(httpapi.Deps{
		Query:       query.NewResolver(st),
		Ingest:      runner,
		Health:      st,
		Metrics:     m,
		MetricsPath: cfg.Metrics.Path,
		Logger:      logger,
	})
	srv := httpapi.NewServer(cfg.Server.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var p *poller.Poller
	if cfg.Ingest.Interval > 0 {
		p = poller.New(poller.Config{Interval: cfg.Ingest.Interval, Timeout: cfg.Ingest.Timeout}, runner, logger)
		if err := p.Start(ctx); err != nil {
			logger.Error("failed to start poller", "error", err)
			os.Exit(1)
		}
	}

	// Wait for shutdown
	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("http server error", "error", err)
		cancel()
	}

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown", "error", err)
	}
	if p != nil {
		if err := p.Stop(shutdownCtx); err != nil {
			logger.Warn("poller shutdown", "error", err)
		}
	}

	logger.Info("server stopped")
}
