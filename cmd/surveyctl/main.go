// Command surveyctl fills and inspects the youth registration survey from a
// terminal, talking to the intake service over HTTP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/juventudesmira/intake/internal/cache"
	"github.com/juventudesmira/intake/internal/client"
	"github.com/juventudesmira/intake/internal/config"
	"github.com/juventudesmira/intake/internal/survey"
)

var (
	serverURL string
	redisURL  string
	verbose   bool
)

// sessionTTL bounds how long a remembered lookup survives in Redis.
const sessionTTL = 7 * 24 * time.Hour

var rootCmd = &cobra.Command{
	Use:           "surveyctl",
	Short:         "Fill and inspect the youth registration survey",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		cfg = &config.Config{ServerURL: "http://localhost:8080"}
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", cfg.ServerURL, "intake service base URL")
	rootCmd.PersistentFlags().StringVar(&redisURL, "redis", cfg.RedisURL, "Redis URL remembering the last lookup (memory when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")

	rootCmd.AddCommand(schemaCmd, headersCmd, lookupCmd, fillCmd, checkCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newClient() *client.Client { return client.New(serverURL, nil) }

// openCache returns the session cache and a func releasing it.
func openCache(ctx context.Context) (cache.SessionCache, func(), error) {
	if redisURL == "" {
		return cache.NewMemory(), func() {}, nil
	}
	rdb, err := cache.Open(ctx, redisURL)
	if err != nil {
		return nil, nil, err
	}
	host, _ := os.Hostname()
	return cache.NewRedis(rdb, host, sessionTTL), func() { rdb.Close() }, nil
}

func schema() *survey.Schema { return survey.Default() }
