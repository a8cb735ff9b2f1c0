package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
// A missing EIA API key is not an error here: the EIA source reports it
// when it runs, and the remaining sources still ingest.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return errors.New("database.path is required")
		}
	case "postgres":
		if err := c.Database.Postgres.validate("database.postgres"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}

	if c.Upstream.MaxAttempts < 1 {
		return errors.New("upstream.max_attempts must be >= 1")
	}
	if c.Upstream.Timeout <= 0 {
		return errors.New("upstream.timeout must be > 0")
	}

	if err := c.Sources.validate(); err != nil {
		return err
	}

	if c.Ingest.Concurrency < 1 {
		return errors.New("ingest.concurrency must be >= 1")
	}
	if c.Ingest.Timeout <= 0 {
		return errors.New("ingest.timeout must be > 0")
	}
	if c.Ingest.Interval < 0 {
		return errors.New("ingest.interval must be >= 0")
	}

	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, warning or error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	if c.Logging.MaxAge < 0 {
		return errors.New("logging.max_age must be >= 0")
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path)
	}

	return nil
}

func (s *SourcesConfig) validate() error {
	if !s.EIA.Disabled {
		for i, series := range s.EIA.Series {
			if series.ID == "" {
				return fmt.Errorf("sources.eia.series[%d].id is required", i)
			}
		}
	}

	if !s.GDELT.Disabled {
		for i, q := range s.GDELT.Queries {
			if strings.TrimSpace(q.Query) == "" {
				return fmt.Errorf("sources.gdelt.queries[%d].query is required", i)
			}
			if q.HoursBack < 1 {
				return fmt.Errorf("sources.gdelt.queries[%d].hours_back must be >= 1", i)
			}
			if q.MaxRecords < 1 || q.MaxRecords > MaxGDELTRecords {
				return fmt.Errorf("sources.gdelt.queries[%d].max_records must be between 1 and %d, got %d", i, MaxGDELTRecords, q.MaxRecords)
			}
		}
	}

	if !s.Feeds.Disabled {
		if s.Feeds.Limit < 1 {
			return errors.New("sources.feeds.limit must be >= 1")
		}
		for i, u := range s.Feeds.URLs {
			if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
				return fmt.Errorf("sources.feeds.urls[%d] must be an http(s) URL, got %q", i, u)
			}
		}
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
