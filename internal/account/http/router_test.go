package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/notes/internal/account/domain"
	"github.com/AlibekovAA/notes/internal/account/repository"
	"github.com/AlibekovAA/notes/internal/account/service"
	"github.com/AlibekovAA/notes/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/notes/internal/common/crypto"
	"github.com/AlibekovAA/notes/internal/common/db"
	commonhttp "github.com/AlibekovAA/notes/internal/common/http"
	"github.com/AlibekovAA/notes/internal/common/jwtverify"
	"github.com/AlibekovAA/notes/internal/common/logger"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()

	sqlDB, err := db.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.EnsureSQLiteSchema(ctx, sqlDB))

	log := logger.NewWithWriter(io.Discard, "test", "info")
	clk := clock.NewRealClock()
	ids := commoncrypto.NewUUIDGenerator()
	svc := service.NewAccountService(
		repository.NewSQLiteRepository(sqlDB),
		repository.NewSQLiteRevokedTokenRepository(sqlDB, clk),
		commoncrypto.NewBcryptHasher(4),
		ids,
		service.NewTokenIssuer(testSecret, ids, time.Hour, clk),
		clk,
		log,
	)

	r := mux.NewRouter()
	auth := mux.MiddlewareFunc(jwtverify.Middleware(testSecret, svc, log))
	NewHandler(svc, nil, log, 5*time.Second).Register(r, auth)
	return r
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) sessionResponse {
	t.Helper()
	var resp sessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) commonhttp.ErrorEnvelope {
	t.Helper()
	var env commonhttp.ErrorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func TestAccountRoutes_RegisterLoginMe(t *testing.T) {
	h := newTestRouter(t)
	creds := map[string]string{"email": "ann@example.com", "password": "secret1"}

	rec := do(t, h, http.MethodPost, "/api/accounts/register", "", creds)
	require.Equal(t, http.StatusCreated, rec.Code)
	registered := decodeSession(t, rec)
	assert.Equal(t, "ann@example.com", registered.Account.Email)
	assert.NotEmpty(t, registered.Token)

	rec = do(t, h, http.MethodPost, "/api/accounts/login", "", creds)
	require.Equal(t, http.StatusOK, rec.Code)
	loggedIn := decodeSession(t, rec)
	assert.Equal(t, registered.Account.ID, loggedIn.Account.ID)

	rec = do(t, h, http.MethodPatch, "/api/accounts/profile", loggedIn.Token, map[string]string{"displayName": "Ann"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/accounts/me", loggedIn.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me domain.Public
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&me))
	assert.Equal(t, "Ann", me.DisplayName)
	assert.Equal(t, registered.Account.ID, me.ID)
}

func TestAccountRoutes_RegisterErrors(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/accounts/register", "", map[string]string{"email": "ann@example.com", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "WEAK_PASSWORD", decodeEnvelope(t, rec).Code)

	rec = do(t, h, http.MethodPost, "/api/accounts/register", "", map[string]string{"email": "nope", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_EMAIL", decodeEnvelope(t, rec).Code)

	creds := map[string]string{"email": "ann@example.com", "password": "secret1"}
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/accounts/register", "", creds).Code)

	rec = do(t, h, http.MethodPost, "/api/accounts/register", "", creds)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "EMAIL_ALREADY_IN_USE", decodeEnvelope(t, rec).Code)
}

func TestAccountRoutes_LoginWrongPassword(t *testing.T) {
	h := newTestRouter(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/accounts/register", "",
		map[string]string{"email": "ann@example.com", "password": "secret1"}).Code)

	rec := do(t, h, http.MethodPost, "/api/accounts/login", "", map[string]string{"email": "ann@example.com", "password": "wrong1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeEnvelope(t, rec).Code)
}

func TestAccountRoutes_LogoutRevokesToken(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodPost, "/api/accounts/register", "", map[string]string{"email": "ann@example.com", "password": "secret1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	token := decodeSession(t, rec).Token

	rec = do(t, h, http.MethodPost, "/api/accounts/logout", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/accounts/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_REVOKED", decodeEnvelope(t, rec).Code)
}

func TestAccountRoutes_RequireBearer(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/accounts/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/accounts/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
