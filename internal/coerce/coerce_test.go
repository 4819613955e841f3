package coerce

import (
	"reflect"
	"testing"

	"github.com/anothingguy/revenue-spacebar/internal/schema"
)

func strp(s string) *string { return &s }

func TestValue_NullSentinels(t *testing.T) {
	t.Parallel()

	types := []schema.LogicalType{
		schema.Text, schema.Integer, schema.Numeric,
		schema.Boolean, schema.Date, schema.Timestamp,
	}
	for _, raw := range []string{"", `\N`, `\\N`} {
		for _, typ := range types {
			if got := Value(strp(raw), typ); got != nil {
				t.Errorf("Value(%q, %s) = %v, want nil", raw, typ, got)
			}
		}
	}
	for _, typ := range types {
		if got := Value(nil, typ); got != nil {
			t.Errorf("Value(nil, %s) = %v, want nil", typ, got)
		}
	}
}

func TestValue_Boolean(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want any
	}{
		{"true", true}, {"TRUE", true}, {"t", true}, {"T", true},
		{"1", true}, {"yes", true}, {"Yes", true},
		{"false", false}, {"FALSE", false}, {"f", false}, {"F", false},
		{"0", false}, {"no", false}, {"No", false},
		{"maybe", nil}, {"2", nil}, {"truthy", nil}, {" true", nil},
	}
	for _, tc := range cases {
		if got := Value(strp(tc.in), schema.Boolean); got != tc.want {
			t.Errorf("Value(%q, Boolean) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestValue_Integer(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want any
	}{
		{"42", int64(42)},
		{"42.0", int64(42)},
		{"7.9", int64(7)},
		{"-3.9", int64(-3)},
		{"0", int64(0)},
		{"abc", nil},
		{"1e3", int64(1000)},
		{"nan", nil},
		{"inf", nil},
	}
	for _, tc := range cases {
		if got := Value(strp(tc.in), schema.Integer); got != tc.want {
			t.Errorf("Value(%q, Integer) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestValue_Numeric(t *testing.T) {
	t.Parallel()

	if got := Value(strp("3.25"), schema.Numeric); got != 3.25 {
		t.Errorf("Value(3.25, Numeric) = %v", got)
	}
	if got := Value(strp("-1e2"), schema.Numeric); got != -100.0 {
		t.Errorf("Value(-1e2, Numeric) = %v", got)
	}
	if got := Value(strp("abc"), schema.Numeric); got != nil {
		t.Errorf("Value(abc, Numeric) = %v, want nil", got)
	}
}

func TestValue_Passthrough(t *testing.T) {
	t.Parallel()

	// Text, Date and Timestamp keep the raw string; the database interprets
	// temporal values at insert time.
	for _, typ := range []schema.LogicalType{schema.Text, schema.Date, schema.Timestamp} {
		if got := Value(strp("2025-09-22"), typ); got != "2025-09-22" {
			t.Errorf("Value(2025-09-22, %s) = %v", typ, got)
		}
	}
	if got := Value(strp("  spaced  "), schema.Text); got != "  spaced  " {
		t.Errorf("Text must pass through unmodified, got %q", got)
	}
}

func TestRow_OrderAndMissingColumns(t *testing.T) {
	t.Parallel()

	s := schema.Schema{
		Table: "t",
		Columns: []schema.Column{
			{Name: "NAME", Type: schema.Text},
			{Name: "COUNT", Type: schema.Integer},
			{Name: "ACTIVE", Type: schema.Boolean},
		},
	}
	rec := map[string]string{
		"NAME":  "acme",
		"COUNT": "12.0",
		// ACTIVE missing entirely
	}
	got := Row(rec, s)
	want := []any{"acme", int64(12), nil}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Row = %#v, want %#v", got, want)
	}
}
