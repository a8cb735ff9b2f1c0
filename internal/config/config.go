package config

import "time"

// Config is the root configuration shared by the server, ingest and seed binaries.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Sources  SourcesConfig  `yaml:"sources"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// DatabaseConfig selects and configures the store backend.
type DatabaseConfig struct {
	Driver      string        `yaml:"driver"` // "sqlite" or "postgres"
	Path        string        `yaml:"path"`   // SQLite file
	BusyTimeout time.Duration `yaml:"busy_timeout"`
	Postgres    DBConfig      `yaml:"postgres"`
}

// DBConfig holds a single PostgreSQL connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// UpstreamConfig holds HTTP fetch settings shared by all sources.
type UpstreamConfig struct {
	Timeout         time.Duration `yaml:"timeout"` // Per attempt
	MaxAttempts     int           `yaml:"max_attempts"`
	PolitenessDelay time.Duration `yaml:"politeness_delay"` // Between requests to one host; 0 uses the default, negative disables
	UserAgent       string        `yaml:"user_agent"`
}

// SourcesConfig lists the upstream sources to ingest.
type SourcesConfig struct {
	EIA   EIAConfig   `yaml:"eia"`
	GDELT GDELTConfig `yaml:"gdelt"`
	Feeds FeedsConfig `yaml:"feeds"`
}

// EIAConfig holds EIA API v2 settings.
type EIAConfig struct {
	Disabled bool        `yaml:"disabled"`
	BaseURL  string      `yaml:"base_url"`
	APIKey   string      `yaml:"api_key"`
	Series   []EIASeries `yaml:"series"`
}

// EIASeries maps an EIA series id to the label its prices are stored under.
type EIASeries struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
}

// GDELTConfig holds GDELT DOC 2.0 settings.
type GDELTConfig struct {
	Disabled bool         `yaml:"disabled"`
	BaseURL  string       `yaml:"base_url"`
	Queries  []GDELTQuery `yaml:"queries"`
}

// GDELTQuery is one article search.
type GDELTQuery struct {
	Query      string `yaml:"query"`
	Series     string `yaml:"series"`
	HoursBack  int    `yaml:"hours_back"`
	MaxRecords int    `yaml:"max_records"`
}

// FeedsConfig holds RSS/Atom feed settings.
type FeedsConfig struct {
	Disabled bool     `yaml:"disabled"`
	Series   string   `yaml:"series"`
	Limit    int      `yaml:"limit"` // Items per feed
	URLs     []string `yaml:"urls"`
}

// IngestConfig holds ingestion run settings.
type IngestConfig struct {
	Concurrency int           `yaml:"concurrency"` // Sources fetched in parallel
	Timeout     time.Duration `yaml:"timeout"`     // Whole run
	Interval    time.Duration `yaml:"interval"`    // Scheduled runs in the server; 0 disables
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`  // debug, info, warn, error
	Format     string `yaml:"format"` // text or json
	Output     string `yaml:"output"` // stdout, stderr, or a file path
	MaxAge     int    `yaml:"max_age"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}
