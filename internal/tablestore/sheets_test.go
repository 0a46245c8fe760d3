package tablestore_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/juventudesmira/intake/internal/survey"
	"github.com/juventudesmira/intake/internal/tablestore"
)

// sheetsAPI answers the handful of Sheets v4 calls the grid makes.
type sheetsAPI struct {
	mu       sync.Mutex
	header   []any
	appended [][]any
	updated  map[string][]any
	denied   bool
	// headerWrites counts updates of the header row.
	headerWrites int
}

func (a *sheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if a.denied {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"error":{"code":403,"message":"The caller does not have permission"}}`)
		return
	}

	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet && !strings.Contains(path, "/values/"):
		io.WriteString(w, `{"properties":{"title":"Registro Juventudes"}}`)
	case r.Method == http.MethodGet && strings.HasSuffix(path, "1:1"):
		if len(a.header) == 0 {
			io.WriteString(w, `{}`)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"values": [][]any{a.header}})
	case r.Method == http.MethodPost && strings.HasSuffix(path, "1:1:clear"):
		a.header = nil
		io.WriteString(w, `{}`)
	case r.Method == http.MethodGet:
		io.WriteString(w, `{"values":[["1234567","Ana"],["7654321"]]}`)
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
		var vr sheets.ValueRange
		json.NewDecoder(r.Body).Decode(&vr)
		a.appended = append(a.appended, vr.Values...)
		io.WriteString(w, `{}`)
	case r.Method == http.MethodPut:
		var vr sheets.ValueRange
		json.NewDecoder(r.Body).Decode(&vr)
		rng := path[strings.LastIndex(path, "/")+1:]
		a.updated[rng] = vr.Values[0]
		if strings.HasSuffix(rng, "!1:1") {
			// An update only covers the cells it sends.
			a.headerWrites++
			for i, v := range vr.Values[0] {
				if i < len(a.header) {
					a.header[i] = v
				} else {
					a.header = append(a.header, v)
				}
			}
		}
		io.WriteString(w, `{}`)
	default:
		http.NotFound(w, r)
	}
}

func newSheetsGrid(t *testing.T, api *sheetsAPI) *tablestore.SheetsGrid {
	t.Helper()
	ts := httptest.NewServer(api)
	t.Cleanup(ts.Close)

	srv, err := sheets.NewService(context.Background(),
		option.WithEndpoint(ts.URL+"/"),
		option.WithHTTPClient(ts.Client()),
	)
	require.NoError(t, err)
	return tablestore.NewSheetsGridWithService(srv, "sheet-id", "Sheet1")
}

func TestSheetsGrid(t *testing.T) {
	ctx := context.Background()
	api := &sheetsAPI{header: []any{"Número de Documento", "Nombre"}, updated: map[string][]any{}}
	g := newSheetsGrid(t, api)

	title, err := g.Title(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Registro Juventudes", title)

	header, err := g.Header(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Número de Documento", "Nombre"}, header)

	rows, err := g.Rows(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1234567", "Ana"}, {"7654321"}}, rows)

	require.NoError(t, g.AppendRow(ctx, []string{"1111111", "Luis"}))
	require.Len(t, api.appended, 1)
	assert.Equal(t, []any{"1111111", "Luis"}, api.appended[0])

	require.NoError(t, g.UpdateRow(ctx, 3, []string{"7654321", "Sara"}))
	assert.Equal(t, []any{"7654321", "Sara"}, api.updated["'Sheet1'!A3"])
}

func TestSheetsGridSurfacesProviderMessage(t *testing.T) {
	g := newSheetsGrid(t, &sheetsAPI{denied: true})

	_, err := g.Header(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "The caller does not have permission")
}

func TestSheetsGridRewritesLongerHeaderExactly(t *testing.T) {
	ctx := context.Background()
	want := survey.Default().Headers()

	var header []any
	for _, h := range want {
		header = append(header, h)
	}
	header = append(header, "Legacy A", "Legacy B")

	api := &sheetsAPI{header: header, updated: map[string][]any{}}
	st := tablestore.New(newSheetsGrid(t, api), survey.Default(), quietLogger())

	for range 3 {
		require.NoError(t, st.EnsureHeader(ctx))
	}

	got, err := newSheetsGrid(t, api).Header(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, api.headerWrites, "a matching header is not rewritten")
}
