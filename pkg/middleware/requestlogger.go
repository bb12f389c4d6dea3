package middleware

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/StorefrontGo/pkg/logger"
)

// RequestLogger builds a request-scoped logger carrying correlation_id,
// user_id, trace_id, and span_id, and stores it via logger.NewContext for
// handlers to pick up with logger.FromContext.
//
// Mount after RequestLogging (correlation ID) and Tracing (span context).
// The gateway identity header only fills user_id when nothing upstream has
// set one on the context already.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if logger.UserIDFromContext(ctx) == "" {
				if userID := r.Header.Get("X-User-ID"); userID != "" {
					ctx = logger.WithUserID(ctx, userID)
				}
			}

			enriched := logger.WithContext(ctx, base)
			ctx = logger.NewContext(ctx, enriched)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
