package csv

import (
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func writeGzipFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()
	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte(contents)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return path
}

func readAll(t *testing.T, s *Stream) []Record {
	t.Helper()
	var out []Record
	for {
		rec, err := s.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		out = append(out, rec)
	}
}

func TestStream_Basic(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "basic.csv", "A,B,C\n1,2,3\nx,y,z\n")
	s, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if got, want := s.Header(), []string{"A", "B", "C"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Header = %v, want %v", got, want)
	}
	recs := readAll(t, s)
	want := []Record{
		{"A": "1", "B": "2", "C": "3"},
		{"A": "x", "B": "y", "C": "z"},
	}
	if !reflect.DeepEqual(recs, want) {
		t.Fatalf("records = %v, want %v", recs, want)
	}
}

func TestStream_Gzip(t *testing.T) {
	t.Parallel()

	path := writeGzipFile(t, "z.csv.gz", "A,B\n1,2\n")
	s, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	recs := readAll(t, s)
	if len(recs) != 1 || recs[0]["A"] != "1" || recs[0]["B"] != "2" {
		t.Fatalf("records = %v", recs)
	}
}

func TestStream_BOMAndShortRows(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "bom.csv", "\uFEFFA,B\nonly_a\n1,2\n")
	s, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if s.Header()[0] != "A" {
		t.Fatalf("BOM not stripped from header: %q", s.Header()[0])
	}
	recs := readAll(t, s)
	if _, ok := recs[0]["B"]; ok {
		t.Errorf("short row should omit missing column, got %v", recs[0])
	}
	if recs[1]["B"] != "2" {
		t.Errorf("full row lost a column: %v", recs[1])
	}
}

func TestStream_MalformedRowIsSkippable(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "bad.csv", "A,B\n1,2\n\"x\"y,oops\n3,4\n")
	s, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	var good []Record
	var rowErrs int
	for {
		rec, err := s.Next()
		if err == io.EOF {
			break
		}
		var re *RowError
		if errors.As(err, &re) {
			rowErrs++
			continue
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		good = append(good, rec)
	}
	if rowErrs != 1 {
		t.Fatalf("row errors = %d, want 1", rowErrs)
	}
	if len(good) != 2 || good[1]["A"] != "3" {
		t.Fatalf("stream did not continue past bad row: %v", good)
	}
}

func TestStream_EmptyFile(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "empty.csv", "")
	s, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, err := s.Next(); err != io.EOF {
		t.Fatalf("Next on empty file = %v, want io.EOF", err)
	}
}

func TestStream_Delimiter(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "tabs.csv", "A\tB\n1\t2\n")
	s, err := Open(path, Options{Comma: '\t'})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	recs := readAll(t, s)
	if recs[0]["B"] != "2" {
		t.Fatalf("tab-delimited record = %v", recs[0])
	}
}

func TestFirst_Restartable(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "r.csv", "A\nfirst\nsecond\n")

	rec, err := First(path, Options{})
	if err != nil {
		t.Fatalf("First: %v", err)
	}
	if rec["A"] != "first" {
		t.Fatalf("First = %v", rec)
	}

	// A fresh Open must start from the top again.
	s, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	recs := readAll(t, s)
	if len(recs) != 2 || recs[0]["A"] != "first" {
		t.Fatalf("re-opened stream = %v", recs)
	}
}

func TestFirst_HeaderOnly(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "h.csv", "A,B\n")
	rec, err := First(path, Options{})
	if err != nil {
		t.Fatalf("First: %v", err)
	}
	if rec != nil {
		t.Fatalf("First on header-only file = %v, want nil", rec)
	}
}
