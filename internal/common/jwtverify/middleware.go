package jwtverify

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	commonerrors "github.com/AlibekovAA/notes/internal/common/errors"
	commonhttp "github.com/AlibekovAA/notes/internal/common/http"
	"github.com/AlibekovAA/notes/internal/common/logger"
	"github.com/AlibekovAA/notes/internal/observability/metrics"
)

type Claims struct {
	UserID    string
	Email     string
	JTI       string
	ExpiresAt time.Time
}

// RevocationChecker reports whether a token id was revoked by logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type contextKey string

const (
	claimsKey contextKey = "jwt_claims"
	tokenKey  contextKey = "jwt_raw"
)

func Middleware(secret string, revoked RevocationChecker, log *logger.Logger) func(next http.Handler) http.Handler {
	secretBytes := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			traceID := commonhttp.TraceIDFromContext(ctx)

			raw := r.Header.Get("Authorization")
			if raw == "" || !strings.HasPrefix(raw, "Bearer ") {
				log.WithFields(ctx, logger.Fields{"path": r.URL.Path, "action": "jwt_auth_failed"}).Warn("missing or invalid authorization header")
				commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingAuthorization, "missing or invalid authorization", nil, traceID)
				return
			}

			tokenString := strings.TrimPrefix(raw, "Bearer ")
			claims, err := ParseToken(tokenString, secretBytes)
			if err != nil {
				log.WithFields(ctx, logger.Fields{"path": r.URL.Path, "action": "jwt_auth_failed"}).Warnf("invalid token: %v", err)
				commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeInvalidToken, "invalid token", nil, traceID)
				return
			}

			if revoked != nil {
				metrics.JWTRevokedChecksTotal.Inc()
				isRevoked, err := revoked.IsRevoked(ctx, claims.JTI)
				if err != nil {
					commonhttp.HandleError(w, r, err, log)
					return
				}
				if isRevoked {
					log.WithFields(ctx, logger.Fields{"user_id": claims.UserID, "action": "jwt_auth_failed"}).Info("revoked token presented")
					commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonerrors.ErrTokenRevoked.Code(), commonerrors.ErrTokenRevoked.Message(), nil, traceID)
					return
				}
			}

			ctx = context.WithValue(ctx, claimsKey, claims)
			ctx = context.WithValue(ctx, tokenKey, tokenString)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func FromContext(ctx context.Context) (Claims, bool) {
	val := ctx.Value(claimsKey)
	claims, ok := val.(Claims)
	return claims, ok
}

func WithClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func ParseToken(tokenString string, secret []byte) (Claims, error) {
	metrics.JWTValidationsTotal.Inc()
	claims, err := parseToken(tokenString, secret)
	if err != nil {
		metrics.JWTValidationsFailed.Inc()
	}
	return claims, err
}

func parseToken(tokenString string, secret []byte) (Claims, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, commonerrors.ErrInvalidTokenSigningMethod
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		if err == nil {
			err = errors.New("token is not valid")
		}
		return Claims{}, commonerrors.ErrInvalidToken.WithCause(err)
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, commonerrors.ErrInvalidTokenClaims
	}

	sub, _ := mapClaims["sub"].(string)
	email, _ := mapClaims["email"].(string)
	jti, _ := mapClaims["jti"].(string)
	if sub == "" || jti == "" {
		return Claims{}, commonerrors.ErrMissingTokenClaims
	}

	var expiresAt time.Time
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt = exp.Time
	}

	return Claims{
		UserID:    sub,
		Email:     email,
		JTI:       jti,
		ExpiresAt: expiresAt,
	}, nil
}
