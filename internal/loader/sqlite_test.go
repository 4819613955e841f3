package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/anothingguy/revenue-spacebar/internal/schema"
	"github.com/anothingguy/revenue-spacebar/internal/storage"
	_ "github.com/anothingguy/revenue-spacebar/internal/storage/sqlite"
)

// openSQLite opens a throwaway on-disk SQLite sink for end-to-end tests.
func openSQLite(t *testing.T) storage.Sink {
	t.Helper()
	sink, err := storage.New(context.Background(), storage.Config{
		Kind: "sqlite",
		DSN:  filepath.Join(t.TempDir(), "load.db"),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(sink.Close)
	return sink
}

func TestSQLite_EndToEnd(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sink := openSQLite(t)
	ds := testDataset
	ds.DropBeforeCreate = true
	ds.IndexColumns = []string{"NAME"}
	l := New(sink, ds, Options{BatchSize: 2})

	if err := l.Provision(ctx); err != nil {
		t.Fatalf("Provision: %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "w001.csv")
	data := "NAME,QTY\nalpha,1\nbeta,\\N\ngamma,3\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	rep := l.ImportFiles(ctx, []string{path})
	if rep.FilesLoaded != 1 || rep.RowsImported != 3 {
		t.Fatalf("report = %+v", rep)
	}

	l.CreateIndexes(ctx)

	stats, err := sink.TableStats(ctx, ds.Schema.Table)
	if err != nil {
		t.Fatalf("TableStats: %v", err)
	}
	if stats.Rows != 3 {
		t.Fatalf("table rows = %d, want 3", stats.Rows)
	}

	// The sentinel value landed as SQL NULL.
	found, err := sink.RowExists(ctx, ds.Schema.Table, []string{"NAME", "QTY"}, []any{"beta", nil})
	if err != nil {
		t.Fatalf("RowExists: %v", err)
	}
	if !found {
		t.Fatal("NULL-valued row not found via IS NULL probe")
	}
}

func TestSQLite_DuplicateFileSkippedOnSecondRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sink := openSQLite(t)
	ds := testDataset
	ds.CheckDuplicates = true
	l := New(sink, ds, Options{})

	if err := l.Provision(ctx); err != nil {
		t.Fatalf("Provision: %v", err)
	}

	path := filepath.Join(t.TempDir(), "w.csv")
	if err := os.WriteFile(path, []byte("NAME,QTY\nalpha,1\nbeta,2\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	first := l.ImportFile(ctx, path)
	if first.Err != nil || first.RowsImported != 2 {
		t.Fatalf("first import = %+v", first)
	}

	second := l.ImportFile(ctx, path)
	if second.Err != nil {
		t.Fatalf("second import: %v", second.Err)
	}
	if !second.Skipped || second.RowsImported != 0 {
		t.Fatalf("second import = %+v, want skipped", second)
	}

	stats, err := sink.TableStats(ctx, ds.Schema.Table)
	if err != nil {
		t.Fatalf("TableStats: %v", err)
	}
	if stats.Rows != 2 {
		t.Fatalf("table rows = %d, want 2", stats.Rows)
	}
}

func TestSQLite_DropPolicyResetsTable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sink := openSQLite(t)
	ds := testDataset
	ds.DropBeforeCreate = true
	l := New(sink, ds, Options{})

	path := filepath.Join(t.TempDir(), "w.csv")
	if err := os.WriteFile(path, []byte("NAME,QTY\nalpha,1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	for run := 0; run < 2; run++ {
		if err := l.Provision(ctx); err != nil {
			t.Fatalf("Provision run %d: %v", run, err)
		}
		out := l.ImportFile(ctx, path)
		if out.Err != nil {
			t.Fatalf("import run %d: %v", run, out.Err)
		}
	}

	// Two runs, but the drop policy discards the first run's data.
	stats, err := sink.TableStats(ctx, ds.Schema.Table)
	if err != nil {
		t.Fatalf("TableStats: %v", err)
	}
	if stats.Rows != 1 {
		t.Fatalf("table rows = %d, want 1", stats.Rows)
	}
}

func TestSQLite_AppendPolicyAccumulates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sink := openSQLite(t)
	ds := schema.Dataset{
		Name:   "events",
		Schema: testDataset.Schema,
	}
	l := New(sink, ds, Options{})

	if err := l.Provision(ctx); err != nil {
		t.Fatalf("Provision: %v", err)
	}

	dir := t.TempDir()
	for i, contents := range []string{"NAME,QTY\na,1\n", "NAME,QTY\nb,2\n"} {
		path := filepath.Join(dir, "f"+string(rune('0'+i))+".csv")
		if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if out := l.ImportFile(ctx, path); out.Err != nil {
			t.Fatalf("import %d: %v", i, out.Err)
		}
		// Ensure without drop must not clobber existing rows between files.
		if err := l.Provision(ctx); err != nil {
			t.Fatalf("re-Provision: %v", err)
		}
	}

	stats, err := sink.TableStats(ctx, ds.Schema.Table)
	if err != nil {
		t.Fatalf("TableStats: %v", err)
	}
	if stats.Rows != 2 {
		t.Fatalf("table rows = %d, want 2", stats.Rows)
	}
}
