// Package sqlite implements the storage.Sink contract for SQLite via
// database/sql. SQLite has no dedicated bulk-load API, so batched prepared
// inserts inside the per-file transaction carry the volume; that keeps
// moderate loads fast and makes the backend a convenient stand-in for tests.
package sqlite

import (
	"context"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/anothingguy/revenue-spacebar/internal/schema"
	"github.com/anothingguy/revenue-spacebar/internal/storage"
	"github.com/anothingguy/revenue-spacebar/internal/storage/dbsql"
)

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Sink, error) {
		return New(ctx, cfg.DSN)
	})
}

// New opens a SQLite sink. DSN is passed straight to database/sql, e.g.
// "load.db" or "file:load.db?cache=shared".
func New(ctx context.Context, dsn string) (*dbsql.Sink, error) {
	s, err := dbsql.Open(ctx, "sqlite", dsn, dialect)
	if err != nil {
		return nil, err
	}
	// Foreign keys default off in SQLite; best effort.
	_, _ = s.DB().ExecContext(ctx, "PRAGMA foreign_keys = ON")
	return s, nil
}

var dialect = dbsql.Dialect{
	Name:        "sqlite",
	Quote:       quote,
	Placeholder: func(int) string { return "?" },
	SQLType: func(t schema.LogicalType) string {
		switch t {
		case schema.Integer:
			return "INTEGER"
		case schema.Numeric:
			return "NUMERIC"
		case schema.Boolean:
			// SQLite stores booleans as 0/1 integers.
			return "BOOLEAN"
		default:
			// Date and Timestamp stay TEXT; values pass through as strings.
			return "TEXT"
		}
	},
	IdentityColumn:   "INTEGER PRIMARY KEY AUTOINCREMENT",
	CreatedAtType:    "TEXT",
	CreatedAtDefault: "CURRENT_TIMESTAMP",
	DropTableSQL: func(qt string) string {
		return "DROP TABLE IF EXISTS " + qt
	},
	CreateIfNotExists: func(createSQL string) string {
		return strings.Replace(createSQL, "CREATE TABLE ", "CREATE TABLE IF NOT EXISTS ", 1)
	},
	CreateIndexSQL: func(qIdx, _, qTable, _, qCol string) string {
		return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)", qIdx, qTable, qCol)
	},
	ExistsSQL: func(qTable, where string) string {
		return fmt.Sprintf("SELECT 1 FROM %s WHERE %s LIMIT 1", qTable, where)
	},
	TableSizeSQL: nil, // no cheap per-table size in SQLite
}

func quote(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }
