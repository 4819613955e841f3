// Package coerce converts raw CSV fields into typed values according to a
// column's logical type.
//
// The conversion policy is deliberately lenient: malformed booleans and
// numbers become NULL rather than errors. The export feeds contain plenty of
// junk cells and a single bad value must never cost a whole row, so parse
// failures are swallowed here and only the NULL lands in the table.
package coerce

import (
	"math"
	"strconv"
	"strings"

	"github.com/anothingguy/revenue-spacebar/internal/schema"
)

// Null sentinels as they appear in the export files. Both the single and the
// doubled backslash variant occur in the wild.
const (
	sentinelNull        = `\N`
	sentinelNullEscaped = `\\N`
)

// IsNull reports whether a raw field represents an absent value: the empty
// string or one of the NULL sentinels. This check runs before any
// type-specific parsing.
func IsNull(raw string) bool {
	return raw == "" || raw == sentinelNull || raw == sentinelNullEscaped
}

// Value converts a raw field to the typed value for t, or nil for NULL.
// raw == nil means the column was absent from the record entirely.
//
// Date and Timestamp values pass through as text; the database performs the
// final interpretation, exactly as the feed loader has always done.
func Value(raw *string, t schema.LogicalType) any {
	if raw == nil || IsNull(*raw) {
		return nil
	}
	s := *raw
	switch t {
	case schema.Boolean:
		return parseBoolean(s)
	case schema.Integer:
		return parseInteger(s)
	case schema.Numeric:
		return parseNumeric(s)
	default: // Text, Date, Timestamp
		return s
	}
}

// Row coerces a decoded record into a positional value slice following the
// schema's column order. Columns missing from the record coerce to nil.
func Row(rec map[string]string, s schema.Schema) []any {
	out := make([]any, len(s.Columns))
	for i, c := range s.Columns {
		if v, ok := rec[c.Name]; ok {
			out[i] = Value(&v, c.Type)
		}
	}
	return out
}

func parseBoolean(s string) any {
	switch strings.ToLower(s) {
	case "true", "t", "1", "yes":
		return true
	case "false", "f", "0", "no":
		return false
	}
	return nil
}

// parseInteger parses through float64 first so values such as "42.0" survive,
// then truncates toward zero.
func parseInteger(s string) any {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return int64(f)
}

func parseNumeric(s string) any {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return f
}
