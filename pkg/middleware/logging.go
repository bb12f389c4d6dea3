package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/StorefrontGo/pkg/logger"
)

// accessWriter tracks what was actually sent so the access log can report
// status and payload size.
type accessWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (aw *accessWriter) WriteHeader(code int) {
	aw.status = code
	aw.ResponseWriter.WriteHeader(code)
}

func (aw *accessWriter) Write(b []byte) (int, error) {
	n, err := aw.ResponseWriter.Write(b)
	aw.bytes += n
	return n, err
}

// RequestLogging emits one access-log line per request and threads a
// correlation ID through the request. The gateway usually sets
// X-Correlation-ID; when it is absent a fresh UUID is minted so cart and
// catalog calls from the same page load can still be stitched together.
// The ID is echoed back in the response for the SPA.
func RequestLogging(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			correlationID := r.Header.Get("X-Correlation-ID")
			if correlationID == "" {
				correlationID = uuid.New().String()
			}

			ctx := logger.WithCorrelationID(r.Context(), correlationID)
			r = r.WithContext(ctx)
			w.Header().Set("X-Correlation-ID", correlationID)

			aw := &accessWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(aw, r)

			l.InfoContext(ctx, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", aw.status),
				slog.Duration("duration", time.Since(start)),
				slog.Int("bytes", aw.bytes),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("user_agent", r.UserAgent()),
				slog.String("correlation_id", correlationID),
			)
		})
	}
}
