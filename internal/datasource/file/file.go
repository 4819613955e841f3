// Package file implements the local filesystem data source: enumeration of a
// dataset's input files and transparent opening of plain or gzip-compressed
// CSV files.
package file

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	suffixCSV   = ".csv"
	suffixCSVGz = ".csv.gz"
)

// ListDataFiles returns every *.csv and *.csv.gz file directly inside folder,
// sorted lexicographically by path so runs are reproducible and files land in
// append order. The error wraps os.ErrNotExist when the folder is missing, so
// callers can distinguish configuration problems via errors.Is.
func ListDataFiles(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", folder, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, suffixCSV) || strings.HasSuffix(name, suffixCSVGz) {
			files = append(files, filepath.Join(folder, name))
		}
	}
	sort.Strings(files)
	return files, nil
}

// Open opens path for reading, decompressing on the fly when the name ends in
// .gz. The returned ReadCloser closes both the gzip reader and the underlying
// file.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("gzip %s: %w", path, err)
	}
	return &gzipFile{zr: zr, f: f}, nil
}

type gzipFile struct {
	zr *gzip.Reader
	f  *os.File
}

func (g *gzipFile) Read(p []byte) (int, error) { return g.zr.Read(p) }

func (g *gzipFile) Close() error {
	zerr := g.zr.Close()
	ferr := g.f.Close()
	if zerr != nil {
		return zerr
	}
	return ferr
}
