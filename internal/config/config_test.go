package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
database:
  driver: sqlite
  path: /var/lib/gas/gas.db
upstream:
  timeout: 15s
  politeness_delay: 250ms
sources:
  eia:
    series:
      - id: NG.RNGWHHD.D
        label: HENRY_HUB_SPOT
  gdelt:
    queries:
      - query: natural gas
        max_records: 50
  feeds:
    limit: 20
    urls:
      - https://www.eia.gov/rss/todayinenergy.xml
ingest:
  interval: 1h
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Path != "/var/lib/gas/gas.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/var/lib/gas/gas.db")
	}
	if cfg.Upstream.Timeout != 15*time.Second {
		t.Errorf("Upstream.Timeout = %v, want %v", cfg.Upstream.Timeout, 15*time.Second)
	}
	if cfg.Upstream.PolitenessDelay != 250*time.Millisecond {
		t.Errorf("Upstream.PolitenessDelay = %v, want %v", cfg.Upstream.PolitenessDelay, 250*time.Millisecond)
	}
	if len(cfg.Sources.GDELT.Queries) != 1 || cfg.Sources.GDELT.Queries[0].MaxRecords != 50 {
		t.Errorf("Sources.GDELT.Queries = %+v, want one query with max_records 50", cfg.Sources.GDELT.Queries)
	}
	if len(cfg.Sources.Feeds.URLs) != 1 {
		t.Errorf("len(Sources.Feeds.URLs) = %d, want 1", len(cfg.Sources.Feeds.URLs))
	}
	if cfg.Ingest.Interval != time.Hour {
		t.Errorf("Ingest.Interval = %v, want %v", cfg.Ingest.Interval, time.Hour)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "secret123")
	t.Setenv("TEST_EIA_KEY", "eia-key")

	yaml := `
database:
  driver: postgres
  postgres:
    host: localhost
    name: gas
    user: gas
    password: ${TEST_DB_PASSWORD}
sources:
  eia:
    api_key: ${TEST_EIA_KEY}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Postgres.Password != "secret123" {
		t.Errorf("Database.Postgres.Password = %q, want %q", cfg.Database.Postgres.Password, "secret123")
	}
	if cfg.Sources.EIA.APIKey != "eia-key" {
		t.Errorf("Sources.EIA.APIKey = %q, want %q", cfg.Sources.EIA.APIKey, "eia-key")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	t.Setenv(EnvDBPath, "")
	t.Setenv(EnvEIAAPIKey, "")
	t.Setenv(EnvEIASeriesID, "")

	path := writeTempFile(t, "server:\n  addr: \":9000\"\n")

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":9000")
	}
	if cfg.Database.Driver != DefaultDBDriver {
		t.Errorf("Database.Driver = %q, want default %q", cfg.Database.Driver, DefaultDBDriver)
	}
	if cfg.Database.Path != DefaultDBPath {
		t.Errorf("Database.Path = %q, want default %q", cfg.Database.Path, DefaultDBPath)
	}
	if cfg.Upstream.MaxAttempts != DefaultMaxAttempts {
		t.Errorf("Upstream.MaxAttempts = %d, want default %d", cfg.Upstream.MaxAttempts, DefaultMaxAttempts)
	}
	if cfg.Upstream.PolitenessDelay != DefaultPolitenessDelay {
		t.Errorf("Upstream.PolitenessDelay = %v, want default %v", cfg.Upstream.PolitenessDelay, DefaultPolitenessDelay)
	}
	if len(cfg.Sources.EIA.Series) != 1 || cfg.Sources.EIA.Series[0].ID != DefaultEIASeriesID {
		t.Errorf("Sources.EIA.Series = %+v, want default %s", cfg.Sources.EIA.Series, DefaultEIASeriesID)
	}
	if cfg.Sources.EIA.Series[0].Label != "HENRY_HUB_SPOT" {
		t.Errorf("Sources.EIA.Series[0].Label = %q, want HENRY_HUB_SPOT", cfg.Sources.EIA.Series[0].Label)
	}
	q := cfg.Sources.GDELT.Queries[0]
	if q.Query != "natural gas" || q.Series != "NG_FUTURES" || q.HoursBack != 24 || q.MaxRecords != 25 {
		t.Errorf("Sources.GDELT.Queries[0] = %+v, want natural gas/NG_FUTURES/24/25", q)
	}
	if len(cfg.Sources.Feeds.URLs) != len(DefaultFeeds) {
		t.Errorf("len(Sources.Feeds.URLs) = %d, want %d", len(cfg.Sources.Feeds.URLs), len(DefaultFeeds))
	}
	if cfg.Sources.Feeds.Limit != 75 {
		t.Errorf("Sources.Feeds.Limit = %d, want 75", cfg.Sources.Feeds.Limit)
	}
	if cfg.Database.Postgres.Port != DefaultDBPort {
		t.Errorf("Database.Postgres.Port = %d, want default %d", cfg.Database.Postgres.Port, DefaultDBPort)
	}
	if cfg.Metrics.Path != DefaultMetricsPath {
		t.Errorf("Metrics.Path = %q, want default %q", cfg.Metrics.Path, DefaultMetricsPath)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadPolitenessDisabled(t *testing.T) {
	t.Setenv(EnvDBPath, "")
	t.Setenv(EnvEIAAPIKey, "")
	t.Setenv(EnvEIASeriesID, "")

	path := writeTempFile(t, "upstream:\n  politeness_delay: -1s\n")

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}
	if cfg.Upstream.PolitenessDelay != -time.Second {
		t.Errorf("Upstream.PolitenessDelay = %v, want -1s", cfg.Upstream.PolitenessDelay)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvDBPath, "/tmp/override.db")
	t.Setenv(EnvEIAAPIKey, "from-env")
	t.Setenv(EnvEIASeriesID, "NG.N3035US3.M")

	cfg := Default()

	if cfg.Database.Path != "/tmp/override.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/override.db")
	}
	if cfg.Sources.EIA.APIKey != "from-env" {
		t.Errorf("Sources.EIA.APIKey = %q, want %q", cfg.Sources.EIA.APIKey, "from-env")
	}
	if cfg.Sources.EIA.Series[0].ID != "NG.N3035US3.M" {
		t.Errorf("Sources.EIA.Series[0].ID = %q, want %q", cfg.Sources.EIA.Series[0].ID, "NG.N3035US3.M")
	}

	t.Run("file api key wins", func(t *testing.T) {
		path := writeTempFile(t, "sources:\n  eia:\n    api_key: from-file\n")
		cfg, err := LoadWithDefaults(path)
		if err != nil {
			t.Fatalf("LoadWithDefaults failed: %v", err)
		}
		if cfg.Sources.EIA.APIKey != "from-file" {
			t.Errorf("Sources.EIA.APIKey = %q, want %q", cfg.Sources.EIA.APIKey, "from-file")
		}
	})
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("GAS_TEST_DOTENV=loaded\n"), 0644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("GAS_TEST_DOTENV", "")
	os.Unsetenv("GAS_TEST_DOTENV")

	if err := LoadEnvFiles(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadEnvFiles failed: %v", err)
	}
	if got := os.Getenv("GAS_TEST_DOTENV"); got != "loaded" {
		t.Errorf("GAS_TEST_DOTENV = %q, want %q", got, "loaded")
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if cfg.Server.Addr != "" {
		t.Errorf("Server.Addr = %q, want empty before defaults", cfg.Server.Addr)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.applyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Database.Driver = "mysql" },
			wantErr: `database.driver must be sqlite or postgres, got "mysql"`,
		},
		{
			name:    "missing postgres host",
			mutate:  func(c *Config) { c.Database.Driver = "postgres" },
			wantErr: "database.postgres.host is required",
		},
		{
			name: "min_conns exceeds max_conns",
			mutate: func(c *Config) {
				c.Database.Driver = "postgres"
				c.Database.Postgres = DBConfig{Host: "localhost", Name: "db", User: "user", Password: "pass", MaxConns: 5, MinConns: 10}
			},
			wantErr: "database.postgres.min_conns (10) cannot exceed max_conns (5)",
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Ingest.Concurrency = -1 },
			wantErr: "ingest.concurrency must be >= 1",
		},
		{
			name:    "gdelt max records",
			mutate:  func(c *Config) { c.Sources.GDELT.Queries[0].MaxRecords = 500 },
			wantErr: "sources.gdelt.queries[0].max_records must be between 1 and 250, got 500",
		},
		{
			name: "disabled gdelt skips checks",
			mutate: func(c *Config) {
				c.Sources.GDELT.Disabled = true
				c.Sources.GDELT.Queries[0].MaxRecords = 500
			},
			wantErr: "",
		},
		{
			name:    "missing eia series id",
			mutate:  func(c *Config) { c.Sources.EIA.Series = []EIASeries{{Label: "X"}} },
			wantErr: "sources.eia.series[0].id is required",
		},
		{
			name:    "bad feed url",
			mutate:  func(c *Config) { c.Sources.Feeds.URLs = []string{"ftp://example.com/feed"} },
			wantErr: `sources.feeds.urls[0] must be an http(s) URL, got "ftp://example.com/feed"`,
		},
		{
			name:    "warning log level",
			mutate:  func(c *Config) { c.Logging.Level = "warning" },
			wantErr: "",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "trace" },
			wantErr: `logging.level must be debug, info, warn, warning or error, got "trace"`,
		},
		{
			name:    "negative politeness disables spacing",
			mutate:  func(c *Config) { c.Upstream.PolitenessDelay = -time.Second },
			wantErr: "",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: `logging.format must be text or json, got "xml"`,
		},
		{
			name: "bad metrics path",
			mutate: func(c *Config) {
				c.Metrics.Enabled = true
				c.Metrics.Path = "metrics"
			},
			wantErr: `metrics.path must start with /, got "metrics"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoadExampleConfig(t *testing.T) {
	t.Setenv(EnvDBPath, "")
	t.Setenv(EnvEIAAPIKey, "example-key")

	cfg, err := LoadAndValidate("../../configs/gas.example.yaml")
	if err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}
	if cfg.Database.Path != DefaultDBPath {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, DefaultDBPath)
	}
	if cfg.Sources.EIA.APIKey != "example-key" {
		t.Errorf("EIA.APIKey = %q, want example-key", cfg.Sources.EIA.APIKey)
	}
	if len(cfg.Sources.Feeds.URLs) != len(DefaultFeeds) {
		t.Errorf("len(Feeds.URLs) = %d, want %d", len(cfg.Sources.Feeds.URLs), len(DefaultFeeds))
	}
	if cfg.Ingest.Interval != 0 {
		t.Errorf("Ingest.Interval = %v, want 0", cfg.Ingest.Interval)
	}
}
