// Package middleware holds the HTTP middleware chain applied by cmd/server.
package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/pesio-ai/be-tbc-triage/internal/platform/httpclient"
)

// RequestID tags each request with an id, echoed in X-Request-Id.
// It must run inside Logger so the id lands on the request logger.
func RequestID(next http.Handler) http.Handler {
	return hlog.RequestIDHandler("request_id", "X-Request-Id")(next)
}

// Logger installs log on the request context and writes one access line
// per request.
func Logger(log *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		access := hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
			hlog.FromRequest(r).Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("size", size).
				Dur("duration", duration).
				Msg("request")
		})
		return hlog.NewHandler(*log)(hlog.RemoteAddrHandler("remote_addr")(access(next)))
	}
}

type recoveryLogger struct {
	log *zerolog.Logger
}

func (l recoveryLogger) Println(args ...interface{}) {
	l.log.Error().Interface("panic", args).Msg("recovered from panic")
}

// Recovery turns handler panics into 500 responses
func Recovery(log *zerolog.Logger) func(http.Handler) http.Handler {
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{log: log}),
		handlers.PrintRecoveryStack(false),
	)
}

// CORS allows browser clients from origins
func CORS(origins []string) func(http.Handler) http.Handler {
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "X-Request-Id"}),
	)
}

// Timeout bounds handler execution
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, `{"error":{"code":"TIMEOUT","message":"request timed out"}}`)
	}
}

// RequireBearer rejects requests without a bearer token and forwards
// the token to backend calls made with the request context.
func RequireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"missing bearer token"}}`))
			return
		}
		ctx := httpclient.WithToken(r.Context(), strings.TrimSpace(token))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
