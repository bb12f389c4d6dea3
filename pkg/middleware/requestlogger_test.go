package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/StorefrontGo/pkg/logger"
)

// captureRequestLog runs one request through RequestLogger with a handler
// that logs a single line via the context logger, and returns the decoded
// log record.
func captureRequestLog(t *testing.T, mutate func(*http.Request)) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	base := logger.NewWithWriter("storefront", "info", &buf)

	handler := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("cart updated")
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	if mutate != nil {
		mutate(req)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestRequestLogger_ContextLoggerAvailable(t *testing.T) {
	out := captureRequestLog(t, nil)
	assert.Equal(t, "cart updated", out["msg"])
}

func TestRequestLogger_CarriesCorrelationID(t *testing.T) {
	out := captureRequestLog(t, func(req *http.Request) {
		ctx := logger.WithCorrelationID(req.Context(), "corr-cart-123")
		*req = *req.WithContext(ctx)
	})
	assert.Equal(t, "corr-cart-123", out["correlation_id"])
}

func TestRequestLogger_UserIDFromGatewayHeader(t *testing.T) {
	out := captureRequestLog(t, func(req *http.Request) {
		req.Header.Set("X-User-ID", "user-9f2c")
	})
	assert.Equal(t, "user-9f2c", out["user_id"])
}

func TestRequestLogger_ContextUserIDWinsOverHeader(t *testing.T) {
	out := captureRequestLog(t, func(req *http.Request) {
		ctx := logger.WithUserID(req.Context(), "ctx-user")
		*req = *req.WithContext(ctx)
		req.Header.Set("X-User-ID", "header-user")
	})
	assert.Equal(t, "ctx-user", out["user_id"])
}

func TestRequestLogger_CarriesTraceFields(t *testing.T) {
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)

	out := captureRequestLog(t, func(req *http.Request) {
		sc := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    traceID,
			SpanID:     spanID,
			TraceFlags: trace.FlagsSampled,
		})
		*req = *req.WithContext(trace.ContextWithSpanContext(context.Background(), sc))
	})

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", out["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", out["span_id"])
}

func TestRequestLogger_AnonymousOmitsUserID(t *testing.T) {
	out := captureRequestLog(t, nil)
	_, present := out["user_id"]
	assert.False(t, present, "anonymous catalog browsing must not log a user_id")
}
