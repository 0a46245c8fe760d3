// Package tablestore persists flat answer records in a table with a header
// row, one record per document number.
package tablestore

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/juventudesmira/intake/internal/survey"
)

var (
	ErrKeyNotFound = errors.New("no record found for key")
	ErrMissingKey  = errors.New("record has no document number")
	// ErrKeyColumnMissing means the stored header has no document column.
	ErrKeyColumnMissing = errors.New("key column not found in header")
)

// AdapterError wraps a failure of the underlying grid.
type AdapterError struct {
	Op  string
	Err error
}

func (e *AdapterError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *AdapterError) Unwrap() error { return e.Err }

// Grid is a sheet of string cells. Row numbers are 1-based and row 1 is the
// header, so the data row at index i lives at row i+2.
type Grid interface {
	Header(ctx context.Context) ([]string, error)
	WriteHeader(ctx context.Context, header []string) error
	// Rows returns every data row below the header. Rows may be shorter than
	// the header when trailing cells are empty.
	Rows(ctx context.Context) ([][]string, error)
	UpdateRow(ctx context.Context, row int, cells []string) error
	AppendRow(ctx context.Context, cells []string) error
	// Title names the backing table and proves it is reachable.
	Title(ctx context.Context) (string, error)
}

// keyHeaders are header labels accepted as the document column when
// looking records up in tables written by older versions of the form.
var keyHeaders = []string{"CC"}

type Store struct {
	grid   Grid
	schema *survey.Schema
	logger *slog.Logger
}

func New(grid Grid, schema *survey.Schema, logger *slog.Logger) *Store {
	return &Store{grid: grid, schema: schema, logger: logger}
}

// Lookup returns the record stored under key as header → cell. Cells
// missing from a short row read as "".
func (s *Store) Lookup(ctx context.Context, key string) (map[string]string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrMissingKey
	}

	header, err := s.grid.Header(ctx)
	if err != nil {
		return nil, &AdapterError{Op: "reading header", Err: err}
	}
	if len(header) == 0 {
		return nil, ErrKeyNotFound
	}
	col := s.keyColumn(header)
	if col < 0 {
		return nil, ErrKeyColumnMissing
	}

	rows, err := s.grid.Rows(ctx)
	if err != nil {
		return nil, &AdapterError{Op: "reading rows", Err: err}
	}
	for _, row := range rows {
		if cell(row, col) != key {
			continue
		}
		record := make(map[string]string, len(header))
		for i, h := range header {
			record[h] = cell(row, i)
		}
		return record, nil
	}
	return nil, ErrKeyNotFound
}

// Upsert writes row under its document number. A row without one is
// rejected before the grid is touched. Otherwise the header is rewritten
// when it differs from the schema's, an existing row with the same key is
// updated in place, and otherwise the row is appended.
func (s *Store) Upsert(ctx context.Context, row map[string]any) error {
	columns := s.schema.ColumnOrder()
	keyIdx := s.schema.ColumnIndex(survey.DocumentColumn)

	cells := make([]string, len(columns))
	for i, c := range columns {
		cells[i] = Serialize(row[c])
	}
	key := strings.TrimSpace(cells[keyIdx])
	if key == "" {
		return ErrMissingKey
	}

	if err := s.EnsureHeader(ctx); err != nil {
		return err
	}

	rows, err := s.grid.Rows(ctx)
	if err != nil {
		return &AdapterError{Op: "reading rows", Err: err}
	}
	for i, r := range rows {
		if cell(r, keyIdx) != key {
			continue
		}
		if err := s.grid.UpdateRow(ctx, i+2, cells); err != nil {
			return &AdapterError{Op: "updating row", Err: err}
		}
		s.logger.Info("record updated", "document", key, "row", i+2)
		return nil
	}

	if err := s.grid.AppendRow(ctx, cells); err != nil {
		return &AdapterError{Op: "appending row", Err: err}
	}
	s.logger.Info("record appended", "document", key)
	return nil
}

// Submit upserts a flattened form payload. It satisfies form.Submitter.
func (s *Store) Submit(ctx context.Context, payload map[string]string) error {
	row := make(map[string]any, len(payload))
	for k, v := range payload {
		row[k] = v
	}
	return s.Upsert(ctx, row)
}

// EnsureHeader rewrites the header row when its length, content or order
// differs from the schema's headers.
func (s *Store) EnsureHeader(ctx context.Context) error {
	want := s.schema.Headers()
	got, err := s.grid.Header(ctx)
	if err != nil {
		return &AdapterError{Op: "reading header", Err: err}
	}
	if slices.Equal(got, want) {
		return nil
	}
	s.logger.Warn("header mismatch, rewriting", "have", len(got), "want", len(want))
	if err := s.grid.WriteHeader(ctx, want); err != nil {
		return &AdapterError{Op: "writing header", Err: err}
	}
	return nil
}

// Ping returns the title of the backing table.
func (s *Store) Ping(ctx context.Context) (string, error) {
	title, err := s.grid.Title(ctx)
	if err != nil {
		return "", &AdapterError{Op: "opening table", Err: err}
	}
	return title, nil
}

func (s *Store) keyColumn(header []string) int {
	col := s.schema.Columns()[s.schema.ColumnIndex(survey.DocumentColumn)]
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == col.Header || h == col.Key || slices.Contains(keyHeaders, h) {
			return i
		}
	}
	return -1
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
