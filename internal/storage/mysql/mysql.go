// Package mysql implements the storage.Sink contract for MySQL/MariaDB via
// database/sql and go-sql-driver/mysql.
package mysql

import (
	"context"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/anothingguy/revenue-spacebar/internal/schema"
	"github.com/anothingguy/revenue-spacebar/internal/storage"
	"github.com/anothingguy/revenue-spacebar/internal/storage/dbsql"
)

func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Sink, error) {
		return New(ctx, cfg.DSN)
	})
}

// New opens a MySQL sink. DSN follows go-sql-driver format, e.g.
// "user:pass@tcp(host:3306)/dbname".
func New(ctx context.Context, dsn string) (*dbsql.Sink, error) {
	return dbsql.Open(ctx, "mysql", dsn, dialect)
}

var dialect = dbsql.Dialect{
	Name:        "mysql",
	Quote:       quote,
	Placeholder: func(int) string { return "?" },
	SQLType: func(t schema.LogicalType) string {
		switch t {
		case schema.Integer:
			return "BIGINT"
		case schema.Numeric:
			return "DOUBLE"
		case schema.Boolean:
			return "BOOLEAN"
		case schema.Date:
			return "DATE"
		case schema.Timestamp:
			return "DATETIME"
		default:
			return "TEXT"
		}
	},
	IdentityColumn:   "BIGINT AUTO_INCREMENT PRIMARY KEY",
	CreatedAtType:    "TIMESTAMP",
	CreatedAtDefault: "CURRENT_TIMESTAMP",
	DropTableSQL: func(qt string) string {
		return "DROP TABLE IF EXISTS " + qt
	},
	CreateIfNotExists: func(createSQL string) string {
		return strings.Replace(createSQL, "CREATE TABLE ", "CREATE TABLE IF NOT EXISTS ", 1)
	},
	// MySQL has no CREATE INDEX IF NOT EXISTS; duplicate-index errors are
	// tolerated by the caller's per-index failure policy. TEXT columns also
	// need a key prefix length.
	CreateIndexSQL: func(qIdx, _, qTable, _, qCol string) string {
		return fmt.Sprintf("CREATE INDEX %s ON %s (%s(255))", qIdx, qTable, qCol)
	},
	ExistsSQL: func(qTable, where string) string {
		return fmt.Sprintf("SELECT 1 FROM %s WHERE %s LIMIT 1", qTable, where)
	},
	TableSizeSQL: func(rawTable string) string {
		return fmt.Sprintf(
			"SELECT CONCAT(ROUND((data_length + index_length) / 1024 / 1024, 1), ' MB')"+
				" FROM information_schema.tables WHERE table_name = '%s'",
			strings.ReplaceAll(rawTable, "'", "''"),
		)
	},
}

func quote(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }
