package store

// sqliteSchema creates tables and indexes. Statements are idempotent.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS prices (
		series         TEXT    NOT NULL,
		t_ms           INTEGER NOT NULL,
		price          REAL    NOT NULL,
		source         TEXT    NOT NULL,
		inserted_at_ms INTEGER NOT NULL,
		PRIMARY KEY (series, t_ms)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_prices_series_t ON prices(series, t_ms)`,
	`CREATE TABLE IF NOT EXISTS news (
		id             TEXT PRIMARY KEY,
		series         TEXT    NOT NULL,
		t_ms           INTEGER NOT NULL,
		category       TEXT    NOT NULL,
		source         TEXT    NOT NULL,
		title          TEXT    NOT NULL,
		url            TEXT    NOT NULL,
		inserted_at_ms INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_news_series_t ON news(series, t_ms)`,
	`CREATE INDEX IF NOT EXISTS idx_news_category ON news(category)`,
}

// postgresSchema mirrors sqliteSchema with PostgreSQL types.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS prices (
		series         TEXT             NOT NULL,
		t_ms           BIGINT           NOT NULL,
		price          DOUBLE PRECISION NOT NULL,
		source         TEXT             NOT NULL,
		inserted_at_ms BIGINT           NOT NULL,
		PRIMARY KEY (series, t_ms)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_prices_series_t ON prices(series, t_ms)`,
	`CREATE TABLE IF NOT EXISTS news (
		id             TEXT PRIMARY KEY,
		series         TEXT   NOT NULL,
		t_ms           BIGINT NOT NULL,
		category       TEXT   NOT NULL,
		source         TEXT   NOT NULL,
		title          TEXT   NOT NULL,
		url            TEXT   NOT NULL,
		inserted_at_ms BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_news_series_t ON news(series, t_ms)`,
	`CREATE INDEX IF NOT EXISTS idx_news_category ON news(category)`,
}

const sqliteUpsertPrice = `
	INSERT INTO prices (series, t_ms, price, source, inserted_at_ms)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (series, t_ms) DO UPDATE SET
		price = excluded.price,
		source = excluded.source,
		inserted_at_ms = excluded.inserted_at_ms`

const sqliteUpsertNews = `
	INSERT INTO news (id, series, t_ms, category, source, title, url, inserted_at_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		series = excluded.series,
		t_ms = excluded.t_ms,
		category = excluded.category,
		source = excluded.source,
		title = excluded.title,
		url = excluded.url,
		inserted_at_ms = excluded.inserted_at_ms`

const postgresUpsertPrice = `
	INSERT INTO prices (series, t_ms, price, source, inserted_at_ms)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (series, t_ms) DO UPDATE SET
		price = EXCLUDED.price,
		source = EXCLUDED.source,
		inserted_at_ms = EXCLUDED.inserted_at_ms`

const postgresUpsertNews = `
	INSERT INTO news (id, series, t_ms, category, source, title, url, inserted_at_ms)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO UPDATE SET
		series = EXCLUDED.series,
		t_ms = EXCLUDED.t_ms,
		category = EXCLUDED.category,
		source = EXCLUDED.source,
		title = EXCLUDED.title,
		url = EXCLUDED.url,
		inserted_at_ms = EXCLUDED.inserted_at_ms`
