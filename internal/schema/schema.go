// Package schema defines the per-dataset column contracts used end-to-end by
// the import pipeline: the same ordered column list drives CREATE TABLE
// rendering, CSV decoding, value coercion, and positional insert binding.
//
// Schemas are declared once (see registry.go) and never mutated afterwards.
package schema

import "fmt"

// LogicalType is the semantic type a column is interpreted as, independent of
// the storage representation chosen by a backend dialect.
type LogicalType int

const (
	Text LogicalType = iota
	Integer
	Numeric
	Boolean
	Date
	Timestamp
)

// String returns the canonical name of the logical type.
func (t LogicalType) String() string {
	switch t {
	case Text:
		return "TEXT"
	case Integer:
		return "INTEGER"
	case Numeric:
		return "NUMERIC"
	case Boolean:
		return "BOOLEAN"
	case Date:
		return "DATE"
	case Timestamp:
		return "TIMESTAMP"
	}
	return fmt.Sprintf("LogicalType(%d)", int(t))
}

// Column pairs a source/destination column name with its logical type. Names
// are matched case-sensitively against CSV header cells.
type Column struct {
	Name string
	Type LogicalType
}

// Schema is an ordered column list bound to a destination table. Column order
// is an invariant: DDL, decode, coercion, and insert binding all follow it.
type Schema struct {
	Table   string
	Columns []Column
}

// ColumnNames returns the column names in declaration order.
func (s Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Validate checks the structural invariants: a non-empty table name, at least
// one column, and no duplicate column names.
func (s Schema) Validate() error {
	if s.Table == "" {
		return fmt.Errorf("schema: table name must not be empty")
	}
	if len(s.Columns) == 0 {
		return fmt.Errorf("schema %s: at least one column is required", s.Table)
	}
	seen := make(map[string]struct{}, len(s.Columns))
	for _, c := range s.Columns {
		if c.Name == "" {
			return fmt.Errorf("schema %s: column with empty name", s.Table)
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("schema %s: duplicate column %s", s.Table, c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	return nil
}
