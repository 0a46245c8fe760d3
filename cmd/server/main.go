package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/juventudesmira/intake/internal/config"
	"github.com/juventudesmira/intake/internal/database"
	"github.com/juventudesmira/intake/internal/migrations"
	"github.com/juventudesmira/intake/internal/server"
	"github.com/juventudesmira/intake/internal/survey"
	"github.com/juventudesmira/intake/internal/tablestore"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	schema := survey.Default()

	// --- Table store ---
	grid, checks, closeGrid, err := openGrid(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeGrid()
	store := tablestore.New(grid, schema, logger)
	logger.Info("table store ready", "backend", cfg.StoreBackend, "sheet", cfg.SheetName)

	// --- HTTP Server ---
	var opts []server.Option
	if cfg.StaticDir != "" {
		opts = append(opts, server.WithStaticDir(cfg.StaticDir))
		logger.Info("serving web form", "dir", cfg.StaticDir)
	}
	srv := server.New(cfg.HTTPAddr, logger, schema, store, checks, opts...)

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

// openGrid opens the configured backend and the health checks that go
// with it.
func openGrid(ctx context.Context, cfg *config.Config) (tablestore.Grid, map[string]server.Checker, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		db, err := openSQLite(ctx, cfg.DBPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connecting to sqlite: %w", err)
		}
		checks := map[string]server.Checker{"sqlite": server.CheckerFunc(db.PingContext)}
		return tablestore.NewSQLGrid(db, cfg.SheetName), checks, func() { db.Close() }, nil

	default:
		grid, err := tablestore.NewSheetsGrid(ctx, tablestore.Credentials{
			ClientEmail: cfg.ClientEmail,
			PrivateKey:  cfg.PrivateKey,
		}, cfg.SheetID, cfg.SheetName)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connecting to google sheets: %w", err)
		}
		checks := map[string]server.Checker{"sheets": server.CheckerFunc(func(ctx context.Context) error {
			_, err := grid.Title(ctx)
			return err
		})}
		return grid, checks, func() {}, nil
	}
}

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path != database.Memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
	}
	db, err := database.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}
