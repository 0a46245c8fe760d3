package client_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juventudesmira/intake/internal/client"
	"github.com/juventudesmira/intake/internal/database"
	"github.com/juventudesmira/intake/internal/migrations"
	"github.com/juventudesmira/intake/internal/server"
	"github.com/juventudesmira/intake/internal/survey"
	"github.com/juventudesmira/intake/internal/tablestore"
)

func newService(t *testing.T) *client.Client {
	t.Helper()
	db, err := database.Open(context.Background(), database.Memory)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Run(db))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := tablestore.New(tablestore.NewSQLGrid(db, "Sheet1"), survey.Default(), logger)
	ts := httptest.NewServer(server.NewHandler(logger, survey.Default(), store, nil))
	t.Cleanup(ts.Close)

	return client.New(ts.URL+"/", ts.Client())
}

func TestSubmitAndLookup(t *testing.T) {
	c := newService(t)
	ctx := context.Background()

	_, err := c.Lookup(ctx, "1234567")
	assert.ErrorIs(t, err, tablestore.ErrKeyNotFound)

	require.NoError(t, c.Submit(ctx, map[string]string{"numeroDocumento": "1234567", "q_2": "Ana"}))

	rec, err := c.Lookup(ctx, "1234567")
	require.NoError(t, err)
	assert.Equal(t, "Ana", rec["Nombre Completo"])

	title, err := c.CheckConnection(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sqlite:Sheet1", title)
}

func TestErrors(t *testing.T) {
	c := newService(t)
	ctx := context.Background()

	var cerr *client.Error

	_, err := c.Lookup(ctx, "12")
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, http.StatusBadRequest, cerr.Status)

	err = c.Submit(ctx, map[string]string{"q_2": "Ana"})
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, http.StatusBadRequest, cerr.Status)
	assert.NotEmpty(t, cerr.Message)
}

func TestUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	err := client.New(url, nil).Submit(context.Background(), map[string]string{"numeroDocumento": "1234567"})
	require.Error(t, err)
	var cerr *client.Error
	assert.False(t, errors.As(err, &cerr))
}
