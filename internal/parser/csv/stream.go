// Package csv streams records out of delimited export files. The first
// physical line is the header and defines the record keys; each following
// line becomes one Record. Compressed inputs (.gz) are decompressed
// transparently via the file datasource.
//
// Streams are restartable: Open always starts from the beginning of the file
// and streams hold no shared cursor state, so a caller can peek at the first
// record (duplicate probing) and later re-open the same file for the full
// import.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/anothingguy/revenue-spacebar/internal/datasource/file"
)

const utf8BOM = "\uFEFF"

// Record maps header names to raw field text for one data line. Columns
// absent from the line are absent from the map.
type Record map[string]string

// Options tune the reader per dataset.
type Options struct {
	// Comma is the field delimiter; zero means ','.
	Comma rune
}

// RowError marks a single malformed line. The stream stays usable after one;
// callers skip the record and keep reading.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }
func (e *RowError) Unwrap() error { return e.Err }

// Stream reads one file's records in order. Not safe for concurrent use.
type Stream struct {
	rc     io.ReadCloser
	cr     *csv.Reader
	header []string
	line   int
}

// Open opens path (plain or gzip) and consumes the header line. An empty file
// yields a stream whose Next immediately returns io.EOF.
func Open(path string, opt Options) (*Stream, error) {
	rc, err := file.Open(path)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(rc)
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	cr.FieldsPerRecord = -1 // ragged lines surface per-record, not fatally
	cr.ReuseRecord = true

	s := &Stream{rc: rc, cr: cr}
	hdr, err := cr.Read()
	s.line++
	switch {
	case err == io.EOF:
		// No header, no records.
		return s, nil
	case err != nil:
		rc.Close()
		return nil, fmt.Errorf("read header %s: %w", path, err)
	}

	s.header = make([]string, len(hdr))
	copy(s.header, hdr)
	if len(s.header) > 0 {
		s.header[0] = strings.TrimPrefix(s.header[0], utf8BOM)
	}
	return s, nil
}

// Header returns the column names from the first line, nil for an empty file.
func (s *Stream) Header() []string { return s.header }

// Next returns the next record. It returns io.EOF at end of input and a
// *RowError for a single malformed line; any other error means the underlying
// stream itself failed.
func (s *Stream) Next() (Record, error) {
	if s.header == nil {
		return nil, io.EOF
	}
	fields, err := s.cr.Read()
	s.line++
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return nil, &RowError{Line: s.line, Err: err}
		}
		return nil, fmt.Errorf("read line %d: %w", s.line, err)
	}

	rec := make(Record, len(s.header))
	for i, name := range s.header {
		if i < len(fields) {
			rec[name] = fields[i]
		}
	}
	return rec, nil
}

// Close releases the underlying file.
func (s *Stream) Close() error { return s.rc.Close() }

// First returns only the first record of path, or (nil, nil) when the file
// has a header but no data rows, or is empty. Used by the duplicate probe.
func First(path string, opt Options) (Record, error) {
	s, err := Open(path, opt)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	rec, err := s.Next()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}
