package jwtverify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "github.com/AlibekovAA/notes/internal/common/errors"
	"github.com/AlibekovAA/notes/internal/common/logger"
)

const secret = "0123456789abcdef0123456789abcdef"

type revokedSet map[string]bool

func (s revokedSet) IsRevoked(_ context.Context, jti string) (bool, error) {
	return s[jti], nil
}

func sign(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims(jti string) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "uid-1",
		"email": "a@x.com",
		"jti":   jti,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
}

func serve(t *testing.T, revoked RevocationChecker, authHeader string) (*httptest.ResponseRecorder, Claims, bool) {
	t.Helper()
	var got Claims
	var ok bool
	h := Middleware(secret, revoked, logger.NewWithWriter(io.Discard, "test", "info"))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok = FromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/documents/notes", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, got, ok
}

func TestMiddleware_ValidToken(t *testing.T) {
	token := sign(t, jwt.SigningMethodHS256, validClaims("j1"))

	rec, claims, ok := serve(t, revokedSet{}, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, ok)
	assert.Equal(t, "uid-1", claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "j1", claims.JTI)
}

func TestMiddleware_Rejections(t *testing.T) {
	expired := validClaims("j2")
	expired["exp"] = time.Now().Add(-time.Minute).Unix()

	noJTI := validClaims("")

	testCases := []struct {
		name    string
		header  string
		revoked revokedSet
	}{
		{"missing header", "", nil},
		{"not bearer", "Basic abc", nil},
		{"garbage", "Bearer not-a-jwt", nil},
		{"expired", "Bearer " + sign(t, jwt.SigningMethodHS256, expired), nil},
		{"wrong alg", "Bearer " + sign(t, jwt.SigningMethodHS512, validClaims("j3")), nil},
		{"missing jti", "Bearer " + sign(t, jwt.SigningMethodHS256, noJTI), nil},
		{"revoked", "Bearer " + sign(t, jwt.SigningMethodHS256, validClaims("j4")), revokedSet{"j4": true}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec, _, ok := serve(t, tc.revoked, tc.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, ok)
		})
	}
}

func TestParseToken_Errors(t *testing.T) {
	_, err := ParseToken("garbage", []byte(secret))
	assert.ErrorIs(t, err, commonerrors.ErrInvalidToken)

	_, err = ParseToken(sign(t, jwt.SigningMethodHS256, validClaims("")), []byte(secret))
	assert.ErrorIs(t, err, commonerrors.ErrMissingTokenClaims)
}
