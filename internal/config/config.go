package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrConfigurationMissing means a setting the selected backend needs is unset.
var ErrConfigurationMissing = errors.New("configuration missing")

const (
	BackendSheets = "sheets"
	BackendSQLite = "sqlite"
)

// LocalEnvFile is read before the environment when present. Variables
// already set in the environment win.
const LocalEnvFile = ".env.local"

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	StoreBackend string `env:"STORE_BACKEND" envDefault:"sheets"`
	SheetName    string `env:"SHEET_NAME" envDefault:"Sheet1"`
	DBPath       string `env:"DB_PATH" envDefault:"data/intake.db"`

	// StaticDir, when set, serves a built web form next to the API.
	StaticDir string `env:"STATIC_DIR"`

	SheetID     string `env:"GOOGLE_SHEET_ID"`
	ClientEmail string `env:"GOOGLE_CLIENT_EMAIL"`
	PrivateKey  string `env:"GOOGLE_PRIVATE_KEY"`

	// RedisURL enables the shared session cache of surveyctl. Empty keeps
	// the cache in memory.
	RedisURL string `env:"REDIS_URL"`

	// ServerURL is where surveyctl reaches the intake service.
	ServerURL string `env:"INTAKE_URL" envDefault:"http://localhost:8080"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(LocalEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", LocalEnvFile, err)
	}
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}

// Validate checks that the selected store backend has what it needs.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendSheets:
		var missing []string
		for name, v := range map[string]string{
			"GOOGLE_SHEET_ID":     c.SheetID,
			"GOOGLE_CLIENT_EMAIL": c.ClientEmail,
			"GOOGLE_PRIVATE_KEY":  c.PrivateKey,
		} {
			if strings.TrimSpace(v) == "" {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			slices.Sort(missing)
			return fmt.Errorf("%w: %s", ErrConfigurationMissing, strings.Join(missing, ", "))
		}
	case BackendSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("%w: DB_PATH", ErrConfigurationMissing)
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	return nil
}
