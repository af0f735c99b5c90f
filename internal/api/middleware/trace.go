// Package middleware contains HTTP middleware shared by both services.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/rubuy74/market-ops/internal/api/shared"
	"github.com/rubuy74/market-ops/internal/platform/logger"
)

// Trace adds a trace ID to the request context and a request-scoped logger
// carrying it. An incoming X-Trace-ID header is reused so calls from RHS to
// MOS share one ID. The ID is echoed on the response.
func Trace(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get(shared.TraceIDHeader)
			if traceID == "" {
				traceID = shared.NewTraceID()
			}
			w.Header().Set(shared.TraceIDHeader, traceID)

			log := base.With(slog.String("trace_id", traceID))
			ctx := shared.WithTraceID(r.Context(), traceID)
			ctx = logger.WithLogger(ctx, log)

			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
