package config

import (
	"os"
	"time"

	"github.com/rickgao/gas-market-data/internal/model"
)

// Default values for optional configuration fields.
const (
	DefaultDBDriver        = "sqlite"
	DefaultDBPath          = "data/gas.db"
	DefaultBusyTimeout     = 5 * time.Second
	DefaultDBPort          = 5432
	DefaultDBSSLMode       = "prefer"
	DefaultMaxConns        = 10
	DefaultMinConns        = 2
	DefaultUpstreamTimeout = 30 * time.Second
	DefaultMaxAttempts     = 10
	DefaultPolitenessDelay = 500 * time.Millisecond
	DefaultEIABaseURL      = "https://api.eia.gov/v2"
	DefaultEIASeriesID     = "NG.RNGWHHD.D" // Henry Hub spot, daily
	DefaultGDELTBaseURL    = "https://api.gdeltproject.org/api/v2/doc/doc"
	DefaultGDELTQuery      = "natural gas"
	DefaultGDELTHoursBack  = 24
	DefaultGDELTMaxRecords = 25
	DefaultFeedLimit       = 75
	DefaultIngestTimeout   = 10 * time.Minute
	DefaultIngestWorkers   = 4
	DefaultServerAddr      = ":8000"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultLogOutput       = "stdout"
	DefaultLogMaxSizeMB    = 100
	DefaultLogMaxBackups   = 5
	DefaultMetricsPath     = "/metrics"
	MaxGDELTRecords        = 250
	DefaultFeedSeries      = model.SeriesHenryHubSpot
	DefaultGDELTSeries     = model.SeriesNGFutures
	DefaultEIASeriesLabel  = model.SeriesHenryHubSpot
)

// DefaultFeeds is the broad market feed list.
var DefaultFeeds = []string{
	// EIA releases
	"https://www.eia.gov/rss/todayinenergy.xml",
	"https://www.eia.gov/rss/press_rss.xml",
	"https://www.eia.gov/about/new/WNtest3.php",
	"https://www.eia.gov/petroleum/gasdiesel/includes/gas_diesel_rss.xml",
	"https://www.eia.gov/petroleum/heatingoilpropane/includes/hopu_rss.xml",

	// NOAA/NHC tropical outlook
	"https://www.nhc.noaa.gov/gtwo.xml",

	// Google News searches
	"https://news.google.com/rss/search?q=%22natural+gas%22+OR+%22Henry+Hub%22+OR+%22NYMEX+natural+gas%22&hl=en-US&gl=US&ceid=US:en",
	"https://news.google.com/rss/search?q=LNG+export+US+terminal+OR+Freeport+OR+Sabine+Pass&hl=en-US&gl=US&ceid=US:en",
	"https://news.google.com/rss/search?q=ERCOT+OR+PJM+OR+%22power+prices%22+OR+%22grid+stress%22&hl=en-US&gl=US&ceid=US:en",
	"https://news.google.com/rss/search?q=commodities+market+OR+oil+prices+OR+gas+prices+AND+futures&hl=en-US&gl=US&ceid=US:en",
}

// Default returns a Config with environment overrides and defaults applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	// Database defaults
	if c.Database.Driver == "" {
		c.Database.Driver = DefaultDBDriver
	}
	if c.Database.Path == "" {
		c.Database.Path = DefaultDBPath
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = DefaultBusyTimeout
	}
	applyDBDefaults(&c.Database.Postgres)

	// Upstream defaults
	if c.Upstream.Timeout == 0 {
		c.Upstream.Timeout = DefaultUpstreamTimeout
	}
	if c.Upstream.MaxAttempts == 0 {
		c.Upstream.MaxAttempts = DefaultMaxAttempts
	}
	if c.Upstream.PolitenessDelay == 0 {
		c.Upstream.PolitenessDelay = DefaultPolitenessDelay
	}

	// Source defaults
	c.applySourceDefaults()

	// Ingest defaults
	if c.Ingest.Concurrency == 0 {
		c.Ingest.Concurrency = DefaultIngestWorkers
	}
	if c.Ingest.Timeout == 0 {
		c.Ingest.Timeout = DefaultIngestTimeout
	}

	// Server defaults
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	if c.Logging.Output == "" {
		c.Logging.Output = DefaultLogOutput
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = DefaultLogMaxBackups
	}

	// Metrics defaults
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}

func (c *Config) applySourceDefaults() {
	eia := &c.Sources.EIA
	if eia.BaseURL == "" {
		eia.BaseURL = DefaultEIABaseURL
	}
	if eia.Series == nil {
		id := os.Getenv(EnvEIASeriesID)
		if id == "" {
			id = DefaultEIASeriesID
		}
		eia.Series = []EIASeries{{ID: id, Label: DefaultEIASeriesLabel}}
	}
	for i := range eia.Series {
		if eia.Series[i].Label == "" {
			eia.Series[i].Label = DefaultEIASeriesLabel
		}
	}

	gdelt := &c.Sources.GDELT
	if gdelt.BaseURL == "" {
		gdelt.BaseURL = DefaultGDELTBaseURL
	}
	if gdelt.Queries == nil {
		gdelt.Queries = []GDELTQuery{{Query: DefaultGDELTQuery}}
	}
	for i := range gdelt.Queries {
		q := &gdelt.Queries[i]
		if q.Series == "" {
			q.Series = DefaultGDELTSeries
		}
		if q.HoursBack == 0 {
			q.HoursBack = DefaultGDELTHoursBack
		}
		if q.MaxRecords == 0 {
			q.MaxRecords = DefaultGDELTMaxRecords
		}
	}

	feeds := &c.Sources.Feeds
	if feeds.Series == "" {
		feeds.Series = DefaultFeedSeries
	}
	if feeds.Limit == 0 {
		feeds.Limit = DefaultFeedLimit
	}
	if feeds.URLs == nil {
		feeds.URLs = append([]string(nil), DefaultFeeds...)
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
