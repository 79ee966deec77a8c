package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/AlibekovAA/notes/internal/common/constants"
	commonerrors "github.com/AlibekovAA/notes/internal/common/errors"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// BackendConfig is read from NOTES_* environment variables.
type BackendConfig struct {
	HTTPPort       string        `envconfig:"HTTP_PORT" default:"8090"`
	DBDriver       string        `envconfig:"DB_DRIVER" default:"postgres"`
	DatabaseURL    string        `envconfig:"DATABASE_URL"`
	SQLitePath     string        `envconfig:"SQLITE_PATH" default:"./data/notes.db"`
	JWTSecret      string        `envconfig:"JWT_SECRET" required:"true"`
	SessionTTL     time.Duration `envconfig:"SESSION_TTL" default:"168h"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"5s"`
	BcryptCost     int           `envconfig:"BCRYPT_COST" default:"12"`
	LogDir         string        `envconfig:"LOG_DIR"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`

	CircuitBreakerThreshold int32         `envconfig:"CB_THRESHOLD" default:"50"`
	CircuitBreakerTimeout   time.Duration `envconfig:"CB_TIMEOUT" default:"15s"`
	CircuitBreakerReset     time.Duration `envconfig:"CB_RESET" default:"10s"`
}

// ClientConfig drives the terminal client. Values come from defaults, then the
// optional YAML file, then NOTES_CLIENT_* environment variables.
type ClientConfig struct {
	ServerURL   string        `yaml:"server_url" envconfig:"SERVER_URL"`
	Timeout     time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	SessionFile string        `yaml:"session_file" envconfig:"SESSION_FILE"`
	LogDir      string        `yaml:"log_dir" envconfig:"LOG_DIR"`
	LogLevel    string        `yaml:"log_level" envconfig:"LOG_LEVEL"`
}

func LoadBackendConfig() (BackendConfig, error) {
	var cfg BackendConfig
	if err := envconfig.Process("notes", &cfg); err != nil {
		return BackendConfig{}, fmt.Errorf("%w: %v", commonerrors.ErrMissingRequiredEnv, err)
	}

	if err := cfg.Validate(); err != nil {
		return BackendConfig{}, err
	}

	return cfg, nil
}

func (c BackendConfig) Validate() error {
	if err := validateJWTSecret(c.JWTSecret); err != nil {
		return err
	}

	switch c.DBDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: NOTES_DATABASE_URL", commonerrors.ErrMissingRequiredEnv)
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: NOTES_SQLITE_PATH", commonerrors.ErrMissingRequiredEnv)
		}
	default:
		return fmt.Errorf("%w: %q", commonerrors.ErrUnsupportedDriver, c.DBDriver)
	}

	return nil
}

func DefaultClientConfig() ClientConfig {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".config", "notes")

	return ClientConfig{
		ServerURL:   "http://localhost:" + constants.DefaultBackendHTTPPort,
		Timeout:     constants.DefaultClientTimeout,
		SessionFile: filepath.Join(base, "session.yaml"),
		LogDir:      filepath.Join(base, "logs"),
		LogLevel:    "info",
	}
}

// LoadClientConfig reads path when it exists; a missing file is not an error.
func LoadClientConfig(path string) (ClientConfig, error) {
	cfg := DefaultClientConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return ClientConfig{}, fmt.Errorf("failed to parse client config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return ClientConfig{}, fmt.Errorf("failed to read client config %s: %w", path, err)
		}
	}

	if err := envconfig.Process("notes_client", &cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("failed to read client environment: %w", err)
	}

	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.DefaultClientTimeout
	}

	return cfg, nil
}

func validateJWTSecret(secret string) error {
	if len(secret) < constants.JWTSecretMinLength {
		return commonerrors.ErrInvalidJWTSecret.WithCause(fmt.Errorf("got %d bytes", len(secret)))
	}
	return nil
}
