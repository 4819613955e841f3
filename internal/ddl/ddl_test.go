package ddl

import (
	"strings"
	"testing"
)

func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	def := TableDef{
		Name: "releases_org_export",
		Columns: []ColumnDef{
			{Name: "id", SQLType: "SERIAL PRIMARY KEY"},
			{Name: "COMPANY_NAME", SQLType: "TEXT"},
			{Name: "FOUNDED", SQLType: "INTEGER"},
			{Name: "created_at", SQLType: "TIMESTAMP", Default: "CURRENT_TIMESTAMP"},
		},
	}
	got, err := BuildCreateTableSQL(def)
	if err != nil {
		t.Fatalf("BuildCreateTableSQL: %v", err)
	}
	want := "CREATE TABLE releases_org_export (\n" +
		"  id SERIAL PRIMARY KEY,\n" +
		"  COMPANY_NAME TEXT,\n" +
		"  FOUNDED INTEGER,\n" +
		"  created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP\n" +
		")"
	if got != want {
		t.Fatalf("BuildCreateTableSQL =\n%s\nwant\n%s", got, want)
	}
}

func TestBuildCreateTableSQL_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		def  TableDef
	}{
		{"empty name", TableDef{Columns: []ColumnDef{{Name: "a", SQLType: "TEXT"}}}},
		{"no columns", TableDef{Name: "t"}},
		{"empty column name", TableDef{Name: "t", Columns: []ColumnDef{{SQLType: "TEXT"}}}},
		{"missing type", TableDef{Name: "t", Columns: []ColumnDef{{Name: "a"}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := BuildCreateTableSQL(tc.def); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestIndexName(t *testing.T) {
	t.Parallel()

	got := IndexName("releases_per_export", "EMAIL_ADDRESS")
	if got != "idx_releases_per_export_email_address" {
		t.Fatalf("IndexName = %s", got)
	}
	if strings.ToLower(got) != got {
		t.Fatalf("index name should be lower case: %s", got)
	}
}
