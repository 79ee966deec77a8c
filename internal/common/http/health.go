package http

import (
	"context"
	"net/http"
	"time"

	"github.com/AlibekovAA/notes/internal/common/logger"
)

func HealthHandler(log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		log.Debugf("health check request")
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadyHandler reports 503 while check fails, typically a database ping.
func ReadyHandler(log *logger.Logger, check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := check(ctx); err != nil {
			log.WithFields(ctx, logger.Fields{"action": "readiness_check"}).Warnf("not ready: %v", err)
			WriteErrorEnvelope(w, http.StatusServiceUnavailable, CodeUnavailable, "not ready", nil, TraceIDFromContext(r.Context()))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// NotFoundHandler answers unknown routes with the error envelope.
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteErrorEnvelope(w, http.StatusNotFound, CodeNotFound, "route not found", nil, TraceIDFromContext(r.Context()))
	})
}

// MethodNotAllowedHandler answers a known route called with the wrong method.
func MethodNotAllowedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteErrorEnvelope(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed", nil, TraceIDFromContext(r.Context()))
	})
}
