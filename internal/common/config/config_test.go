package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "github.com/AlibekovAA/notes/internal/common/errors"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadBackendConfig_Defaults(t *testing.T) {
	t.Setenv("NOTES_JWT_SECRET", testSecret)
	t.Setenv("NOTES_DATABASE_URL", "postgres://notes@localhost/notes")

	cfg, err := LoadBackendConfig()
	require.NoError(t, err)

	assert.Equal(t, "8090", cfg.HTTPPort)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, 168*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, int32(50), cfg.CircuitBreakerThreshold)
}

func TestLoadBackendConfig_MissingSecret(t *testing.T) {
	t.Setenv("NOTES_JWT_SECRET", "")
	t.Setenv("NOTES_DATABASE_URL", "postgres://notes@localhost/notes")

	_, err := LoadBackendConfig()
	require.Error(t, err)
}

func TestLoadBackendConfig_ShortSecret(t *testing.T) {
	t.Setenv("NOTES_JWT_SECRET", "short")
	t.Setenv("NOTES_DATABASE_URL", "postgres://notes@localhost/notes")

	_, err := LoadBackendConfig()
	require.ErrorIs(t, err, commonerrors.ErrInvalidJWTSecret)
}

func TestBackendConfig_Validate_Drivers(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     BackendConfig
		wantErr error
	}{
		{"postgres without url", BackendConfig{JWTSecret: testSecret, DBDriver: DriverPostgres}, commonerrors.ErrMissingRequiredEnv},
		{"sqlite with path", BackendConfig{JWTSecret: testSecret, DBDriver: DriverSQLite, SQLitePath: "notes.db"}, nil},
		{"unknown driver", BackendConfig{JWTSecret: testSecret, DBDriver: "mysql"}, commonerrors.ErrUnsupportedDriver},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestLoadClientConfig_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_url: http://notes.example:9000/\ntimeout: 3s\nlog_level: debug\n"), 0o600))
	t.Setenv("NOTES_CLIENT_LOG_LEVEL", "warn")

	cfg, err := LoadClientConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://notes.example:9000", cfg.ServerURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.NotEmpty(t, cfg.SessionFile)
}

func TestLoadClientConfig_MissingFile(t *testing.T) {
	cfg, err := LoadClientConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultClientConfig().ServerURL, cfg.ServerURL)
}
