package tablestore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juventudesmira/intake/internal/database"
	"github.com/juventudesmira/intake/internal/migrations"
	"github.com/juventudesmira/intake/internal/survey"
	"github.com/juventudesmira/intake/internal/tablestore"
)

func newSQLGrid(t *testing.T, sheet string) *tablestore.SQLGrid {
	t.Helper()
	db, err := database.Open(context.Background(), database.Memory)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Run(db))
	return tablestore.NewSQLGrid(db, sheet)
}

func TestSQLGrid(t *testing.T) {
	ctx := context.Background()
	g := newSQLGrid(t, "Sheet1")

	header, err := g.Header(ctx)
	require.NoError(t, err)
	assert.Empty(t, header)

	require.NoError(t, g.AppendRow(ctx, []string{"1", "a"}))
	require.NoError(t, g.WriteHeader(ctx, []string{"N", "L"}))
	require.NoError(t, g.AppendRow(ctx, []string{"2", "b"}))
	require.NoError(t, g.UpdateRow(ctx, 2, []string{"1", "z"}))

	header, err = g.Header(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"N", "L"}, header)

	rows, err := g.Rows(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "z"}, {"2", "b"}}, rows)

	assert.Error(t, g.UpdateRow(ctx, 1, []string{"x"}))

	title, err := g.Title(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sqlite:Sheet1", title)
}

func TestSQLGridSheetsAreIsolated(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, database.Memory)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, migrations.Run(db))

	a := tablestore.NewSQLGrid(db, "a")
	b := tablestore.NewSQLGrid(db, "b")
	require.NoError(t, a.AppendRow(ctx, []string{"only in a"}))

	rows, err := b.Rows(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestStoreOverSQLGrid(t *testing.T) {
	ctx := context.Background()
	st := tablestore.New(newSQLGrid(t, "Sheet1"), survey.Default(), quietLogger())

	require.NoError(t, st.Upsert(ctx, map[string]any{"numeroDocumento": "1234567", "q_2": "Ana"}))
	require.NoError(t, st.Upsert(ctx, map[string]any{"numeroDocumento": "7654321", "q_2": "Luis"}))
	require.NoError(t, st.Upsert(ctx, map[string]any{"numeroDocumento": "1234567", "q_2": "Ana María"}))

	rec, err := st.Lookup(ctx, "1234567")
	require.NoError(t, err)
	assert.Equal(t, "Ana María", rec["Nombre Completo"])

	rec, err = st.Lookup(ctx, "7654321")
	require.NoError(t, err)
	assert.Equal(t, "Luis", rec["Nombre Completo"])

	_, err = st.Lookup(ctx, "0000000")
	assert.ErrorIs(t, err, tablestore.ErrKeyNotFound)
}
