// Package ddl holds a small, backend-agnostic model for table definitions and
// helpers to render CREATE TABLE statements from it.
//
// The package stays dialect-neutral: identifiers are emitted as given (quoting
// is the backend's job), Default is raw SQL, and no dialect-specific clauses
// such as IF NOT EXISTS are inserted. Storage backends map logical column
// types to their SQL types, build a TableDef, and render it here.
package ddl

import (
	"fmt"
	"strings"
)

// ColumnDef describes one column of a table definition.
type ColumnDef struct {
	Name    string
	SQLType string
	// Default is a raw SQL expression (e.g. CURRENT_TIMESTAMP). Empty means
	// no default clause.
	Default string
}

// TableDef is a table name plus its ordered columns.
type TableDef struct {
	Name    string
	Columns []ColumnDef
}

// BuildCreateTableSQL renders CREATE TABLE <name> (...) from a TableDef.
// Column order is preserved exactly.
func BuildCreateTableSQL(t TableDef) (string, error) {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return "", fmt.Errorf("ddl: table name must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if strings.TrimSpace(c.Name) == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", name)
		}
		if strings.TrimSpace(c.SQLType) == "" {
			return "", fmt.Errorf("ddl: column %s missing SQLType", c.Name)
		}
		var sb strings.Builder
		sb.WriteString(c.Name)
		sb.WriteByte(' ')
		sb.WriteString(c.SQLType)
		if c.Default != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(c.Default)
		}
		cols = append(cols, sb.String())
	}

	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n)", name, strings.Join(cols, ",\n  ")), nil
}

// IndexName derives a deterministic secondary-index name for a column.
func IndexName(table, column string) string {
	return fmt.Sprintf("idx_%s_%s", table, strings.ToLower(column))
}
