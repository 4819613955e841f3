// Package storage contains the backend-agnostic sink contracts and the
// backend factory. Concrete backends (postgres, sqlite, mysql, mssql)
// register themselves at init time; importing internal/storage/all enables
// every built-in backend.
package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/anothingguy/revenue-spacebar/internal/schema"
)

// Sink is what the import pipeline needs from a relational store: DDL for the
// destination table and its indexes, an existence probe for duplicate
// detection, per-file transactions carrying batched inserts, and basic table
// statistics for the run summary.
type Sink interface {
	// EnsureTable creates the destination table. With dropFirst the table is
	// dropped beforehand (destructive refresh); without it an existing table
	// is left untouched.
	EnsureTable(ctx context.Context, sch schema.Schema, dropFirst bool) error

	// CreateIndex creates one secondary index on column, if absent.
	CreateIndex(ctx context.Context, sch schema.Schema, column string) error

	// RowExists probes whether a row matching every column/value pair exists.
	// A nil value in values matches SQL NULL. columns and values are
	// positionally paired and must have equal length.
	RowExists(ctx context.Context, table string, columns []string, values []any) (bool, error)

	// Begin opens the transaction that scopes one file's import.
	Begin(ctx context.Context) (Tx, error)

	// TableStats returns the row count and, where the dialect supports it, a
	// human-readable on-disk size. Size is empty when unavailable.
	TableStats(ctx context.Context, table string) (Stats, error)

	// Close releases the connection or pool.
	Close()
}

// Tx is a single file's transaction. Batched inserts accumulate inside it;
// nothing becomes durable until Commit.
type Tx interface {
	// InsertRows bulk-inserts rows, positionally bound to columns, and
	// returns the number of rows written.
	InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Stats summarizes a destination table after a run.
type Stats struct {
	Rows int64
	Size string
}

// Config selects and configures a backend.
type Config struct {
	// Kind names a registered backend: "postgres", "sqlite", "mysql", "mssql".
	Kind string
	// DSN is the backend-specific connection string.
	DSN string
}

// Factory opens a Sink for a Config.
type Factory func(ctx context.Context, cfg Config) (Sink, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for a backend kind. Called from
// backend packages' init functions.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens a Sink using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Sink, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: no backend registered for kind %q", cfg.Kind)
	}
	return f(ctx, cfg)
}

// Kinds returns the registered backend kinds, for CLI help and validation.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	return out
}
