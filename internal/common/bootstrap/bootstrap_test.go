package bootstrap

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/notes/internal/common/config"
	commonerrors "github.com/AlibekovAA/notes/internal/common/errors"
	"github.com/AlibekovAA/notes/internal/common/logger"
)

func testConfig() config.BackendConfig {
	return config.BackendConfig{
		DBDriver:                config.DriverSQLite,
		SQLitePath:              ":memory:",
		JWTSecret:               "0123456789abcdef0123456789abcdef",
		SessionTTL:              time.Hour,
		RequestTimeout:          5 * time.Second,
		BcryptCost:              4,
		CircuitBreakerThreshold: 5,
		CircuitBreakerTimeout:   time.Second,
		CircuitBreakerReset:     time.Second,
	}
}

func TestNewBackendApp_SQLite(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := NewBackendApp(ctx, testConfig(), logger.NewWithWriter(io.Discard, "test", "info"))
	require.NoError(t, err)
	defer app.Close()
	app.StartBackground(ctx)

	for _, path := range []string{"/health", "/ready", "/metrics"} {
		rec := httptest.NewRecorder()
		app.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	app.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/documents/notes", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNewBackendApp_UnknownRoutesUseEnvelope(t *testing.T) {
	app, err := NewBackendApp(context.Background(), testConfig(), logger.NewWithWriter(io.Discard, "test", "info"))
	require.NoError(t, err)
	defer app.Close()

	rec := httptest.NewRecorder()
	app.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nothing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"NOT_FOUND"`)

	rec = httptest.NewRecorder()
	app.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Body.String(), `"METHOD_NOT_ALLOWED"`)
}

func TestNewBackendApp_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.DBDriver = "mysql"

	_, err := NewBackendApp(context.Background(), cfg, logger.NewWithWriter(io.Discard, "test", "info"))
	assert.ErrorIs(t, err, commonerrors.ErrUnsupportedDriver)
}
