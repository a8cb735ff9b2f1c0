// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// A .env file in the working directory is loaded first when present, so
// EIA_API_KEY can live there. GAS_DB_PATH overrides database.path.
//
// Every field has a default; an empty config path runs with defaults only.
package config
