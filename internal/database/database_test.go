package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/juventudesmira/intake/internal/database"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"memory", database.Memory},
		{"file", filepath.Join(t.TempDir(), "intake.db")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := database.Open(context.Background(), tt.path)
			if err != nil {
				t.Fatalf("opening database: %v", err)
			}
			defer db.Close()

			var fk int
			if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
				t.Fatalf("reading pragma: %v", err)
			}
			if fk != 1 {
				t.Errorf("foreign_keys = %d, want 1", fk)
			}
		})
	}
}
