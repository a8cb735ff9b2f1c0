package main

import (
	"context"
	"flag"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/rickgao/gas-market-data/internal/config"
	"github.com/rickgao/gas-market-data/internal/logging"
	"github.com/rickgao/gas-market-data/internal/model"
	"github.com/rickgao/gas-market-data/internal/query"
	"github.com/rickgao/gas-market-data/internal/sample"
	"github.com/rickgao/gas-market-data/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults only when empty)")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before the config")
	token := flag.String("range", "1Y", "range of synthetic history to generate")
	seed := flag.Uint64("seed", 0, "random seed; 0 uses the current time")
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

	logger, logCloser, err := logging.New(cfg.Logging)
	if err != nil {
		slog.Error("failed to set up logging", "error", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	if !query.ValidToken(*token) {
		logger.Error("invalid range", "range", *token, "valid", query.Tokens)
		os.Exit(2)
	}

	ctx := context.Background()
	st, err := store.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(*seed, *seed>>1))
	now := time.Now()

	seeded := make(map[string]bool)
	for _, label := range model.KnownSeries {
		series := model.CanonicalSeries(label)
		if seeded[series] {
			continue
		}
		seeded[series] = true

		prices := sample.Prices(series, *token, now, rng)
		news := sample.News(*token, prices, rng)

		np, err := st.UpsertPrices(ctx, series, prices)
		if err != nil {
			logger.Error("seed prices failed", "series", series, "error", err)
			os.Exit(1)
		}
		nn, err := st.UpsertNews(ctx, series, news)
		if err != nil {
			logger.Error("seed news failed", "series", series, "error", err)
			os.Exit(1)
		}
		logger.Info("seeded series", "series", series, "prices", np, "news", nn, "range", *token, "seed", *seed)
	}
}
