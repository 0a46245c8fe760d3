package tablestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// SQLGrid is a Grid stored in the grid_rows table of a local libSQL
// database, one JSON array of cells per row.
type SQLGrid struct {
	db    *sql.DB
	sheet string
}

func NewSQLGrid(db *sql.DB, sheet string) *SQLGrid {
	return &SQLGrid{db: db, sheet: sheet}
}

func (g *SQLGrid) Header(ctx context.Context) ([]string, error) {
	var raw string
	err := g.db.QueryRowContext(ctx, `
		SELECT cells FROM grid_rows WHERE sheet = ? AND row_num = 1
	`, g.sheet).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeCells(raw)
}

func (g *SQLGrid) WriteHeader(ctx context.Context, header []string) error {
	return g.put(ctx, 1, header)
}

func (g *SQLGrid) Rows(ctx context.Context) ([][]string, error) {
	rows, err := g.db.QueryContext(ctx, `
		SELECT row_num, cells FROM grid_rows
		WHERE sheet = ? AND row_num > 1
		ORDER BY row_num
	`, g.sheet)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var (
			num int
			raw string
		)
		if err := rows.Scan(&num, &raw); err != nil {
			return nil, err
		}
		cells, err := decodeCells(raw)
		if err != nil {
			return nil, err
		}
		// Keep data index i at row i+2 even across gaps.
		for len(out) < num-2 {
			out = append(out, nil)
		}
		out = append(out, cells)
	}
	return out, rows.Err()
}

func (g *SQLGrid) UpdateRow(ctx context.Context, row int, cells []string) error {
	if row < 2 {
		return fmt.Errorf("row %d is not a data row", row)
	}
	return g.put(ctx, row, cells)
}

func (g *SQLGrid) AppendRow(ctx context.Context, cells []string) error {
	data, err := json.Marshal(cells)
	if err != nil {
		return err
	}
	_, err = g.db.ExecContext(ctx, `
		INSERT INTO grid_rows (sheet, row_num, cells)
		SELECT ?, COALESCE(MAX(row_num), 1) + 1, ?
		FROM grid_rows WHERE sheet = ?
	`, g.sheet, string(data), g.sheet)
	return err
}

func (g *SQLGrid) Title(ctx context.Context) (string, error) {
	if err := g.db.PingContext(ctx); err != nil {
		return "", err
	}
	return "sqlite:" + g.sheet, nil
}

func (g *SQLGrid) put(ctx context.Context, row int, cells []string) error {
	data, err := json.Marshal(cells)
	if err != nil {
		return err
	}
	_, err = g.db.ExecContext(ctx, `
		INSERT INTO grid_rows (sheet, row_num, cells) VALUES (?, ?, ?)
		ON CONFLICT (sheet, row_num) DO UPDATE SET cells = excluded.cells
	`, g.sheet, row, string(data))
	return err
}

func decodeCells(raw string) ([]string, error) {
	var cells []string
	if err := json.Unmarshal([]byte(raw), &cells); err != nil {
		return nil, fmt.Errorf("decoding cells: %w", err)
	}
	return cells, nil
}
