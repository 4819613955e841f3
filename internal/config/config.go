// Package config loads runtime configuration from the environment, optionally
// seeded from a .env file. The variable names match the ones the import jobs
// have always used (DB_HOST, DB_NAME, CSV_FOLDER_PATH, ...), so existing
// deployment environments keep working unchanged.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the resolved runtime configuration.
type Config struct {
	// Backend selects the storage backend kind: postgres, sqlite, mysql, mssql.
	Backend string

	// DSN, when set, is used verbatim and the DB_* parts are ignored.
	DSN string

	// DB connection parts, assembled into a DSN per backend.
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string

	// DataRoot is the directory that dataset folders are resolved under.
	DataRoot string

	// BatchSize is the rows-per-flush threshold for bulk inserts.
	BatchSize int

	// PushgatewayURL enables the Prometheus push backend when non-empty.
	PushgatewayURL string

	// DatadogAddr enables the DogStatsD backend when non-empty.
	DatadogAddr string
}

// LoadDotenv loads a .env file into the process environment, if present.
// A missing file is not an error; real environment variables always win.
func LoadDotenv(path string) error {
	if path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// FromEnv builds a Config from the current environment.
func FromEnv() (Config, error) {
	cfg := Config{
		Backend:        getenv("DB_BACKEND", "postgres"),
		DSN:            os.Getenv("DB_DSN"),
		DBHost:         getenv("DB_HOST", "localhost"),
		DBPort:         getenv("DB_PORT", "5432"),
		DBName:         os.Getenv("DB_NAME"),
		DBUser:         os.Getenv("DB_USER"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DataRoot:       getenv("CSV_FOLDER_PATH", "data"),
		PushgatewayURL: os.Getenv("PUSHGATEWAY_URL"),
		DatadogAddr:    os.Getenv("DATADOG_ADDR"),
	}

	cfg.BatchSize = 0
	if raw := os.Getenv("BATCH_SIZE"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("config: BATCH_SIZE %q is not a positive integer", raw)
		}
		cfg.BatchSize = n
	}
	return cfg, nil
}

// BuildDSN returns the backend-specific connection string, preferring an
// explicit DB_DSN over the assembled DB_* parts.
func (c Config) BuildDSN() (string, error) {
	if c.DSN != "" {
		return c.DSN, nil
	}
	switch c.Backend {
	case "postgres":
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(c.DBUser, c.DBPassword),
			Host:   c.DBHost + ":" + c.DBPort,
			Path:   "/" + c.DBName,
		}
		return u.String(), nil
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName), nil
	case "mssql":
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(c.DBUser, c.DBPassword),
			Host:     c.DBHost + ":" + c.DBPort,
			RawQuery: "database=" + url.QueryEscape(c.DBName),
		}
		return u.String(), nil
	case "sqlite":
		// For SQLite, DB_NAME is the database file path.
		if c.DBName == "" {
			return "", fmt.Errorf("config: sqlite backend needs DB_NAME (database file path)")
		}
		return c.DBName, nil
	}
	return "", fmt.Errorf("config: unknown backend %q", c.Backend)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
