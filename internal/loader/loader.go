// Package loader runs the import pipeline for one dataset: provision the
// destination table, stream each file's records, coerce fields to typed
// values, accumulate rows into batches, and flush batches inside a per-file
// transaction. A file either commits whole or rolls back whole.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"time"

	"github.com/anothingguy/revenue-spacebar/internal/coerce"
	"github.com/anothingguy/revenue-spacebar/internal/datasource/file"
	"github.com/anothingguy/revenue-spacebar/internal/metrics"
	"github.com/anothingguy/revenue-spacebar/internal/parser/csv"
	"github.com/anothingguy/revenue-spacebar/internal/schema"
	"github.com/anothingguy/revenue-spacebar/internal/storage"
)

// DefaultBatchSize is the number of rows accumulated before a flush.
const DefaultBatchSize = 1000

// Options tune a Loader. The zero value is usable.
type Options struct {
	// BatchSize is the rows-per-flush threshold; zero means DefaultBatchSize.
	BatchSize int

	// CSV carries per-dataset reader options (delimiter).
	CSV csv.Options
}

// Loader imports one dataset's files into a storage backend.
type Loader struct {
	sink      storage.Sink
	dataset   schema.Dataset
	batchSize int
	csvOpt    csv.Options
}

// New constructs a Loader for dataset backed by sink.
func New(sink storage.Sink, dataset schema.Dataset, opt Options) *Loader {
	bs := opt.BatchSize
	if bs <= 0 {
		bs = DefaultBatchSize
	}
	return &Loader{sink: sink, dataset: dataset, batchSize: bs, csvOpt: opt.CSV}
}

// Outcome reports what happened to a single file.
type Outcome struct {
	// Path is the file's full path.
	Path string

	// RowsImported counts rows committed from this file.
	RowsImported int64

	// Skipped is true when the duplicate probe found the file's first row
	// already present and the file was not imported.
	Skipped bool

	// Err is non-nil when the file failed and was rolled back.
	Err error
}

// Report aggregates a dataset run.
type Report struct {
	Dataset      string
	Files        []Outcome
	RowsImported int64
	FilesLoaded  int
	FilesSkipped int
	FilesFailed  int
}

func (r *Report) add(o Outcome) {
	r.Files = append(r.Files, o)
	r.RowsImported += o.RowsImported
	switch {
	case o.Err != nil:
		r.FilesFailed++
	case o.Skipped:
		r.FilesSkipped++
	default:
		r.FilesLoaded++
	}
}

// Provision creates the destination table, honoring the dataset's
// drop-before-create policy.
func (l *Loader) Provision(ctx context.Context) error {
	start := time.Now()
	err := l.sink.EnsureTable(ctx, l.dataset.Schema, l.dataset.DropBeforeCreate)
	metrics.RecordStep(l.dataset.Name, "provision", err, time.Since(start))
	if err != nil {
		return fmt.Errorf("provision table %s: %w", l.dataset.Schema.Table, err)
	}
	return nil
}

// CreateIndexes creates the dataset's secondary indexes. Index failures are
// logged and tolerated; the data is already committed by the time indexing
// runs, and a missing index only costs query speed.
func (l *Loader) CreateIndexes(ctx context.Context) {
	for _, col := range l.dataset.IndexColumns {
		start := time.Now()
		err := l.sink.CreateIndex(ctx, l.dataset.Schema, col)
		metrics.RecordStep(l.dataset.Name, "index", err, time.Since(start))
		if err != nil {
			log.Printf("WARN: dataset %s: create index on %s: %v", l.dataset.Name, col, err)
			continue
		}
		log.Printf("dataset %s: index on %s ready", l.dataset.Name, col)
	}
}

// ImportFolder imports every data file in folder, in sorted filename order.
// One file failing does not stop the run; its outcome carries the error and
// the next file proceeds.
func (l *Loader) ImportFolder(ctx context.Context, folder string) (*Report, error) {
	paths, err := file.ListDataFiles(folder)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", folder, err)
	}
	return l.ImportFiles(ctx, paths), nil
}

// ImportFiles imports the given files in order, continuing past per-file
// failures.
func (l *Loader) ImportFiles(ctx context.Context, paths []string) *Report {
	rep := &Report{Dataset: l.dataset.Name}
	for _, p := range paths {
		o := l.ImportFile(ctx, p)
		rep.add(o)
		switch {
		case o.Err != nil:
			metrics.RecordFile(l.dataset.Name, "failed")
			log.Printf("ERROR: dataset %s: %s: %v", l.dataset.Name, filepath.Base(p), o.Err)
		case o.Skipped:
			metrics.RecordFile(l.dataset.Name, "skipped")
			log.Printf("dataset %s: %s already imported, skipping", l.dataset.Name, filepath.Base(p))
		default:
			metrics.RecordFile(l.dataset.Name, "succeeded")
			log.Printf("dataset %s: %s imported, %d rows", l.dataset.Name, filepath.Base(p), o.RowsImported)
		}
	}
	return rep
}

// ImportFile imports a single file inside one transaction. When the dataset
// checks duplicates, the file's first row is probed against the table first
// and the whole file is skipped on a hit. Malformed lines are skipped and
// counted; any other error rolls the file back.
func (l *Loader) ImportFile(ctx context.Context, path string) Outcome {
	out := Outcome{Path: path}

	if l.dataset.CheckDuplicates {
		dup, err := l.AlreadyImported(ctx, path)
		if err != nil {
			// Conservative: probe trouble means import anyway.
			log.Printf("WARN: dataset %s: duplicate probe for %s: %v", l.dataset.Name, filepath.Base(path), err)
		}
		if dup {
			out.Skipped = true
			return out
		}
	}

	start := time.Now()
	n, err := l.importRows(ctx, path)
	metrics.RecordStep(l.dataset.Name, "import_file", err, time.Since(start))
	out.RowsImported = n
	out.Err = err
	return out
}

// importRows does the stream-coerce-batch-commit cycle for one file. Any
// failure rolls the whole transaction back, so error returns report zero
// rows even when earlier batches had flushed.
func (l *Loader) importRows(ctx context.Context, path string) (int64, error) {
	st, err := csv.Open(path, l.csvOpt)
	if err != nil {
		return 0, err
	}
	defer st.Close()

	tx, err := l.sink.Begin(ctx)
	if err != nil {
		return 0, err
	}
	// Rollback after Commit is a no-op in every backend.
	defer tx.Rollback(ctx)

	cols := l.dataset.Schema.ColumnNames()
	batch := make([][]any, 0, l.batchSize)
	var imported, skipped int64

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := tx.InsertRows(ctx, l.dataset.Schema.Table, cols, batch)
		if err != nil {
			return err
		}
		imported += n
		batch = batch[:0]
		return nil
	}

	for {
		rec, err := st.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			var re *csv.RowError
			if errors.As(err, &re) {
				skipped++
				log.Printf("WARN: dataset %s: %s: skipping malformed %v", l.dataset.Name, filepath.Base(path), re)
				continue
			}
			return 0, err
		}

		batch = append(batch, coerce.Row(rec, l.dataset.Schema))
		if len(batch) >= l.batchSize {
			if err := flush(); err != nil {
				return 0, err
			}
		}
	}
	if err := flush(); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit %s: %w", filepath.Base(path), err)
	}
	metrics.RecordRows(l.dataset.Name, "imported", imported)
	metrics.RecordRows(l.dataset.Name, "skipped", skipped)
	return imported, nil
}
