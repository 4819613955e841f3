// Package postgres implements the storage.Sink contract using pgx v5. Bulk
// inserts ride a pgx.Batch inside the per-file transaction, which collapses
// the batch into a single round trip the way the loader expects.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anothingguy/revenue-spacebar/internal/ddl"
	"github.com/anothingguy/revenue-spacebar/internal/schema"
	"github.com/anothingguy/revenue-spacebar/internal/storage"
)

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Sink, error) {
		return New(ctx, cfg.DSN)
	})
}

// Sink is a Postgres-backed storage.Sink.
type Sink struct {
	pool *pgxpool.Pool
}

// New opens a pgx pool for dsn and pings it so connection problems surface at
// startup rather than mid-run.
func New(ctx context.Context, dsn string) (*Sink, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &Sink{pool: pool}, nil
}

// Close releases the pool.
func (s *Sink) Close() { s.pool.Close() }

// sqlType maps a logical column type to its Postgres type.
func sqlType(t schema.LogicalType) string {
	switch t {
	case schema.Integer:
		return "INTEGER"
	case schema.Numeric:
		return "NUMERIC"
	case schema.Boolean:
		return "BOOLEAN"
	case schema.Date:
		return "DATE"
	case schema.Timestamp:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

// EnsureTable creates the destination table with a SERIAL identity key and a
// created_at bookkeeping column. With dropFirst the old table is discarded
// (CASCADE, since secondary indexes may reference it); otherwise an existing
// table is kept as-is for incremental datasets.
func (s *Sink) EnsureTable(ctx context.Context, sch schema.Schema, dropFirst bool) error {
	if dropFirst {
		drop := fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", pgIdent(sch.Table))
		if _, err := s.pool.Exec(ctx, drop); err != nil {
			return fmt.Errorf("drop table %s: %w", sch.Table, err)
		}
	}

	def := ddl.TableDef{Name: pgIdent(sch.Table)}
	def.Columns = append(def.Columns, ddl.ColumnDef{Name: "id", SQLType: "SERIAL PRIMARY KEY"})
	for _, c := range sch.Columns {
		def.Columns = append(def.Columns, ddl.ColumnDef{Name: pgIdent(c.Name), SQLType: sqlType(c.Type)})
	}
	def.Columns = append(def.Columns, ddl.ColumnDef{
		Name: "created_at", SQLType: "TIMESTAMP", Default: "CURRENT_TIMESTAMP",
	})

	create, err := ddl.BuildCreateTableSQL(def)
	if err != nil {
		return err
	}
	if !dropFirst {
		create = strings.Replace(create, "CREATE TABLE ", "CREATE TABLE IF NOT EXISTS ", 1)
	}
	if _, err := s.pool.Exec(ctx, create); err != nil {
		return fmt.Errorf("create table %s: %w", sch.Table, err)
	}
	return nil
}

// CreateIndex creates one secondary index if absent.
func (s *Sink) CreateIndex(ctx context.Context, sch schema.Schema, column string) error {
	stmt := fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
		pgIdent(ddl.IndexName(sch.Table, column)), pgIdent(sch.Table), pgIdent(column),
	)
	if _, err := s.pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("create index on %s.%s: %w", sch.Table, column, err)
	}
	return nil
}

// RowExists runs the duplicate probe: a conjunction of col = $n for non-NULL
// values and col IS NULL for nil ones, LIMIT 1.
func (s *Sink) RowExists(ctx context.Context, table string, columns []string, values []any) (bool, error) {
	if len(columns) != len(values) {
		return false, fmt.Errorf("postgres: RowExists: %d columns vs %d values", len(columns), len(values))
	}
	var (
		conds []string
		args  []any
	)
	for i, col := range columns {
		if values[i] == nil {
			conds = append(conds, pgIdent(col)+" IS NULL")
			continue
		}
		args = append(args, values[i])
		conds = append(conds, fmt.Sprintf("%s = $%d", pgIdent(col), len(args)))
	}
	query := fmt.Sprintf(
		"SELECT 1 FROM %s WHERE %s LIMIT 1",
		pgIdent(table), strings.Join(conds, " AND "),
	)

	var one int
	err := s.pool.QueryRow(ctx, query, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("row probe on %s: %w", table, err)
	}
	return true, nil
}

// Begin opens the per-file transaction.
func (s *Sink) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	return &fileTx{tx: tx}, nil
}

// TableStats reports the row count and pretty-printed relation size.
func (s *Sink) TableStats(ctx context.Context, table string) (storage.Stats, error) {
	var st storage.Stats
	count := fmt.Sprintf("SELECT COUNT(*) FROM %s", pgIdent(table))
	if err := s.pool.QueryRow(ctx, count).Scan(&st.Rows); err != nil {
		return st, fmt.Errorf("count %s: %w", table, err)
	}
	size := "SELECT pg_size_pretty(pg_total_relation_size($1::regclass))"
	if err := s.pool.QueryRow(ctx, size, table).Scan(&st.Size); err != nil {
		return st, fmt.Errorf("relation size %s: %w", table, err)
	}
	return st, nil
}

type fileTx struct {
	tx pgx.Tx
}

// InsertRows queues one INSERT per row on a pgx.Batch and sends it over the
// transaction in a single round trip.
func (t *fileTx) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	insert := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		pgIdent(table), strings.Join(mapIdent(columns), ","), strings.Join(placeholders, ","),
	)

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(insert, row...)
	}
	br := t.tx.SendBatch(ctx, batch)
	var n int64
	for range rows {
		tag, err := br.Exec()
		if err != nil {
			br.Close()
			return n, fmt.Errorf("batch insert into %s: %w", table, err)
		}
		n += tag.RowsAffected()
	}
	if err := br.Close(); err != nil {
		return n, fmt.Errorf("close batch: %w", err)
	}
	return n, nil
}

func (t *fileTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *fileTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

// pgIdent quotes a single identifier segment for Postgres.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// mapIdent maps column names to their quoted forms.
func mapIdent(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = pgIdent(c)
	}
	return out
}
