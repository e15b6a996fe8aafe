package logging

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// RequestIDHeader carries the request identifier between clients and the simulator.
const RequestIDHeader = "X-Request-ID"

type contextKey struct{}

// ContextWithLogger stores logger in ctx.
func ContextWithLogger(ctx context.Context, logger *Logger) context.Context {
	if logger == nil {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, logger)
}

// Scoped returns the logger stored in ctx, if any.
func Scoped(ctx context.Context) (*Logger, bool) {
	if ctx == nil {
		return nil, false
	}
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	return logger, ok && logger != nil
}

// FromContext returns the logger stored in ctx or the global logger.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := Scoped(ctx); ok {
		return logger
	}
	return L()
}

// RequestMiddleware tags every request with a request id, echoes it in the
// response headers and exposes a request-scoped logger through the context.
func RequestMiddleware(base *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
			if id == "" {
				id = uuid.NewString()
			}
			logger := base.With(String("request_id", id))
			w.Header().Set(RequestIDHeader, id)
			logger.Debug("request received", String("method", r.Method), String("path", r.URL.Path))
			next.ServeHTTP(w, r.WithContext(ContextWithLogger(r.Context(), logger)))
		})
	}
}
