package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/juventudesmira/intake/internal/survey"
)

func TestStaticFallsBackToIndex(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>Registro</h1>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644); err != nil {
		t.Fatal(err)
	}

	h := NewHandler(quietLogger(), survey.Default(), failingStore{}, nil, WithStaticDir(dir))

	tests := []struct {
		path string
		want string
	}{
		{"/app.js", "console.log(1)"},
		{"/registro/123", "<h1>Registro</h1>"},
		{"/", "<h1>Registro</h1>"},
	}
	for _, tt := range tests {
		rec := do(t, h, http.MethodGet, tt.path, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: status = %d, want 200", tt.path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), tt.want) {
			t.Errorf("GET %s: body = %q, want %q", tt.path, rec.Body.String(), tt.want)
		}
	}

	// API routes still win.
	rec := do(t, h, http.MethodGet, "/questions", "")
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("GET /questions: content type = %q", ct)
	}
}

func TestStaticDisabledByDefault(t *testing.T) {
	h := NewHandler(quietLogger(), survey.Default(), failingStore{}, nil)
	rec := do(t, h, http.MethodGet, "/registro", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
