// Package dbsql implements storage.Sink on top of database/sql, parameterized
// by a Dialect so SQLite, MySQL and SQL Server share one engine and only the
// SQL surface differs per backend.
package dbsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anothingguy/revenue-spacebar/internal/ddl"
	"github.com/anothingguy/revenue-spacebar/internal/schema"
	"github.com/anothingguy/revenue-spacebar/internal/storage"
)

// Dialect captures everything that varies between database/sql backends.
type Dialect struct {
	// Name of the backend, used in error messages.
	Name string

	// Quote wraps an identifier in the dialect's quoting characters.
	Quote func(ident string) string

	// Placeholder renders the i-th (1-based) bind parameter.
	Placeholder func(i int) string

	// SQLType maps a logical column type to the dialect's SQL type.
	SQLType func(t schema.LogicalType) string

	// IdentityColumn is the full definition of the generated "id" key column,
	// e.g. "INTEGER PRIMARY KEY AUTOINCREMENT".
	IdentityColumn string

	// CreatedAtType and CreatedAtDefault define the created_at column.
	CreatedAtType    string
	CreatedAtDefault string

	// DropTableSQL renders the statement that drops table if it exists.
	DropTableSQL func(quotedTable string) string

	// CreateIfNotExists rewrites a plain CREATE TABLE into its conditional
	// form. Nil when the dialect has no such form; the engine then tolerates
	// the "already exists" failure by probing the table first.
	CreateIfNotExists func(createSQL string) string

	// CreateIndexSQL renders the create-if-absent statement for one index.
	CreateIndexSQL func(quotedIndex, rawIndex, quotedTable, rawTable, quotedColumn string) string

	// ExistsSQL renders the LIMIT-1 existence probe around a WHERE clause.
	ExistsSQL func(quotedTable, whereClause string) string

	// TableSizeSQL optionally renders a query returning a human-readable
	// table size. Empty string result means the dialect has no cheap answer.
	TableSizeSQL func(rawTable string) string
}

// Sink is a database/sql-backed storage.Sink.
type Sink struct {
	db *sql.DB
	d  Dialect
}

// Open opens driverName with dsn, pings with a short timeout, and wraps the
// handle in a Sink for the given dialect.
func Open(ctx context.Context, driverName, dsn string, d Dialect) (*Sink, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%s: DSN must not be empty", d.Name)
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", d.Name, err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: ping: %w", d.Name, err)
	}
	return &Sink{db: db, d: d}, nil
}

// Close closes the database handle.
func (s *Sink) Close() { s.db.Close() }

// DB exposes the underlying handle for backend-specific setup (pragmas).
func (s *Sink) DB() *sql.DB { return s.db }

// EnsureTable creates the destination table with the dialect's identity key
// and created_at column, dropping it first when dropFirst is set.
func (s *Sink) EnsureTable(ctx context.Context, sch schema.Schema, dropFirst bool) error {
	qt := s.d.Quote(sch.Table)
	if dropFirst {
		if _, err := s.db.ExecContext(ctx, s.d.DropTableSQL(qt)); err != nil {
			return fmt.Errorf("%s: drop table %s: %w", s.d.Name, sch.Table, err)
		}
	}

	def := ddl.TableDef{Name: qt}
	def.Columns = append(def.Columns, ddl.ColumnDef{Name: s.d.Quote("id"), SQLType: s.d.IdentityColumn})
	for _, c := range sch.Columns {
		def.Columns = append(def.Columns, ddl.ColumnDef{Name: s.d.Quote(c.Name), SQLType: s.d.SQLType(c.Type)})
	}
	def.Columns = append(def.Columns, ddl.ColumnDef{
		Name: s.d.Quote("created_at"), SQLType: s.d.CreatedAtType, Default: s.d.CreatedAtDefault,
	})

	create, err := ddl.BuildCreateTableSQL(def)
	if err != nil {
		return err
	}
	if !dropFirst {
		if s.d.CreateIfNotExists != nil {
			create = s.d.CreateIfNotExists(create)
		} else if s.tableExists(ctx, qt) {
			return nil
		}
	}
	if _, err := s.db.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("%s: create table %s: %w", s.d.Name, sch.Table, err)
	}
	return nil
}

// tableExists probes with a zero-row select; any error is read as "missing".
func (s *Sink) tableExists(ctx context.Context, quotedTable string) bool {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf("SELECT 1 FROM %s WHERE 1 = 0", quotedTable))
	return err == nil
}

// CreateIndex creates one secondary index if absent.
func (s *Sink) CreateIndex(ctx context.Context, sch schema.Schema, column string) error {
	raw := ddl.IndexName(sch.Table, column)
	stmt := s.d.CreateIndexSQL(s.d.Quote(raw), raw, s.d.Quote(sch.Table), sch.Table, s.d.Quote(column))
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("%s: create index on %s.%s: %w", s.d.Name, sch.Table, column, err)
	}
	return nil
}

// RowExists runs the duplicate probe: col = ? for non-NULL values, col IS
// NULL otherwise, all ANDed, limited to one row.
func (s *Sink) RowExists(ctx context.Context, table string, columns []string, values []any) (bool, error) {
	if len(columns) != len(values) {
		return false, fmt.Errorf("%s: RowExists: %d columns vs %d values", s.d.Name, len(columns), len(values))
	}
	var (
		conds []string
		args  []any
	)
	for i, col := range columns {
		if values[i] == nil {
			conds = append(conds, s.d.Quote(col)+" IS NULL")
			continue
		}
		args = append(args, values[i])
		conds = append(conds, fmt.Sprintf("%s = %s", s.d.Quote(col), s.d.Placeholder(len(args))))
	}
	query := s.d.ExistsSQL(s.d.Quote(table), strings.Join(conds, " AND "))

	var one int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: row probe on %s: %w", s.d.Name, table, err)
	}
	return true, nil
}

// Begin opens the per-file transaction.
func (s *Sink) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin: %w", s.d.Name, err)
	}
	return &fileTx{tx: tx, d: s.d}, nil
}

// TableStats returns the row count, plus a size string when the dialect can
// produce one.
func (s *Sink) TableStats(ctx context.Context, table string) (storage.Stats, error) {
	var st storage.Stats
	count := fmt.Sprintf("SELECT COUNT(*) FROM %s", s.d.Quote(table))
	if err := s.db.QueryRowContext(ctx, count).Scan(&st.Rows); err != nil {
		return st, fmt.Errorf("%s: count %s: %w", s.d.Name, table, err)
	}
	if s.d.TableSizeSQL != nil {
		if q := s.d.TableSizeSQL(table); q != "" {
			// Size is informational; a probe failure should not fail the run.
			_ = s.db.QueryRowContext(ctx, q).Scan(&st.Size)
		}
	}
	return st, nil
}

type fileTx struct {
	tx *sql.Tx
	d  Dialect
}

// InsertRows prepares one parameterized INSERT and executes it per row inside
// the transaction. database/sql backends have no COPY-style primitive, so the
// prepared statement is the bulk path here.
func (t *fileTx) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = t.d.Quote(c)
		placeholders[i] = t.d.Placeholder(i + 1)
	}
	insert := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		t.d.Quote(table), strings.Join(quoted, ","), strings.Join(placeholders, ","),
	)

	stmt, err := t.tx.PrepareContext(ctx, insert)
	if err != nil {
		return 0, fmt.Errorf("%s: prepare insert: %w", t.d.Name, err)
	}
	defer stmt.Close()

	var n int64
	for _, row := range rows {
		if len(row) != len(columns) {
			return n, fmt.Errorf("%s: row length %d != %d columns", t.d.Name, len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return n, fmt.Errorf("%s: insert into %s: %w", t.d.Name, table, err)
		}
		n++
	}
	return n, nil
}

func (t *fileTx) Commit(context.Context) error   { return t.tx.Commit() }
func (t *fileTx) Rollback(context.Context) error { return t.tx.Rollback() }
