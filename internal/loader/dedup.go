package loader

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/anothingguy/revenue-spacebar/internal/coerce"
	"github.com/anothingguy/revenue-spacebar/internal/metrics"
	"github.com/anothingguy/revenue-spacebar/internal/parser/csv"
)

// AlreadyImported reports whether path's content is already in the destination
// table. It reads only the file's first data row, coerces it the same way the
// import would, and probes the table for a row matching every column (NULL
// compared with IS NULL).
//
// The probe is a heuristic: it assumes a file's first row identifies the file.
// It errs toward importing: an empty file, an unreadable first row, or a
// failed query all report false, and the caller proceeds with the import.
func (l *Loader) AlreadyImported(ctx context.Context, path string) (bool, error) {
	rec, err := csv.First(path, l.csvOpt)
	if err != nil {
		return false, err
	}
	if rec == nil {
		// Header-only or empty file: nothing to compare against.
		return false, nil
	}

	cols := l.dataset.Schema.ColumnNames()
	vals := coerce.Row(rec, l.dataset.Schema)

	start := time.Now()
	found, err := l.sink.RowExists(ctx, l.dataset.Schema.Table, cols, vals)
	metrics.RecordStep(l.dataset.Name, "dedup_probe", err, time.Since(start))
	if err != nil {
		return false, err
	}
	if found {
		log.Printf("dataset %s: first row of %s already present", l.dataset.Name, filepath.Base(path))
	}
	return found, nil
}
