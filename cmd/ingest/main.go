package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rickgao/gas-market-data/internal/config"
	"github.com/rickgao/gas-market-data/internal/ingest"
	"github.com/rickgao/gas-market-data/internal/logging"
	"github.com/rickgao/gas-market-data/internal/store"
	"github.com/rickgao/gas-market-data/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults only when empty)")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before the config")
	only := flag.String("only", "", "run a single source kind: prices or news")
	flag.Parse()

	if err := config.LoadEnvFiles(*envFile); err != nil {
		slog.Error("failed to load env file", "error", err)
		os.Exit(1)
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	switch *only {
	case "":
	case string(ingest.KindPrices):
		cfg.Sources.GDELT.Disabled = true
		cfg.Sources.Feeds.Disabled = true
	case string(ingest.KindNews):
		cfg.Sources.EIA.Disabled = true
	default:
		slog.Error("invalid -only value", "value", *only)
		os.Exit(2)
	}

	logger, logCloser, err := logging.New(cfg.Logging)
	if err != nil {
		slog.Error("failed to set up logging", "error", err)
		os.Exit(1)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("starting ingest", "version", version.Version, "commit", version.Commit)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	report, err := ingest.FromConfig(cfg, st, nil, logger).Run(ctx)
	if report != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(report)
	}
	if err != nil {
		logger.Error("ingestion failed", "error", err)
		st.Close()
		os.Exit(1)
	}
	if !report.OK {
		st.Close()
		os.Exit(3)
	}
}
