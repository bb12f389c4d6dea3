package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/StorefrontGo/pkg/errors"
	"github.com/utafrali/StorefrontGo/pkg/logger"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// writeErr runs err through WriteError against a plain catalog request.
func writeErr(t *testing.T, err error, ctx context.Context) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/prod-404", nil)
	if ctx != nil {
		req = req.WithContext(ctx)
	}
	WriteError(rec, req, err, quietLogger())
	return rec, decodeEnvelope(t, rec)
}

func TestWriteJSON_EnvelopeShape(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusOK, Response{Data: map[string]string{"name": "Mechanical Keyboard"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var raw map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
	assert.Contains(t, raw, "data")
	assert.NotContains(t, raw, "error", "success envelope must omit the error key")
}

func TestWriteJSON_ErrorOmitsData(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusNotFound, Response{
		Error: &ErrorResponse{Code: "NOT_FOUND", Message: "product not found"},
	})

	var raw map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
	assert.Contains(t, raw, "error")
	assert.NotContains(t, raw, "data")
}

func TestWriteError_AppErrorKeepsItsStatus(t *testing.T) {
	rec, resp := writeErr(t, apperrors.NotFound("product", "prod-404"), nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "prod-404")
}

func TestWriteError_SentinelMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", apperrors.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"already exists", apperrors.ErrAlreadyExists, http.StatusConflict, "ALREADY_EXISTS"},
		{"invalid input", apperrors.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
		{"anything else", errors.New("redis gone"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := writeErr(t, tt.err, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestWriteError_InternalDetailHidden(t *testing.T) {
	_, resp := writeErr(t, errors.New("dial tcp 10.0.0.5:6379: connection refused"), nil)

	require.NotNil(t, resp.Error)
	assert.Equal(t, "an internal error occurred", resp.Error.Message)
}

func TestWriteError_CorrelationIDBecomesRequestID(t *testing.T) {
	ctx := logger.WithCorrelationID(context.Background(), "corr-page-7")
	_, resp := writeErr(t, apperrors.ErrNotFound, ctx)

	require.NotNil(t, resp.Error)
	assert.Equal(t, "corr-page-7", resp.Error.RequestID)
}

func TestWriteError_NoCorrelationIDOmitsRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	WriteError(rec, req, apperrors.ErrNotFound, quietLogger())

	var raw map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
	var errObj map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw["error"], &errObj))
	assert.NotContains(t, errObj, "request_id")
}

func TestNewPaginatedResponse(t *testing.T) {
	tests := []struct {
		name           string
		totalCount     int
		page           int
		perPage        int
		wantTotalPages int
		wantHasNext    bool
	}{
		{"partial last page", 25, 1, 10, 3, true},
		{"on the last page", 21, 3, 10, 3, false},
		{"exact division", 30, 2, 10, 3, true},
		{"empty catalog still one page", 0, 1, 20, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewPaginatedResponse([]string{"item"}, tt.totalCount, tt.page, tt.perPage)
			assert.Equal(t, tt.wantTotalPages, resp.TotalPages)
			assert.Equal(t, tt.wantHasNext, resp.HasNext)
		})
	}
}

func TestNewPaginatedResponse_NilDataSerializesAsEmptyArray(t *testing.T) {
	resp := NewPaginatedResponse[string](nil, 0, 1, 20)
	require.NotNil(t, resp.Data)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"data":[]`)
}

func TestParseUUID(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		rec := httptest.NewRecorder()
		id, ok := ParseUUID(rec, "550e8400-e29b-41d4-a716-446655440000")
		require.True(t, ok)
		assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", id.String())
		assert.Equal(t, http.StatusOK, rec.Code, "no body may be written on success")
	})

	t.Run("uppercase normalizes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		id, ok := ParseUUID(rec, "550E8400-E29B-41D4-A716-446655440000")
		require.True(t, ok)
		assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", id.String())
	})

	for _, bad := range []string{"", "prod-001", "abc123"} {
		t.Run("rejects "+bad, func(t *testing.T) {
			rec := httptest.NewRecorder()
			_, ok := ParseUUID(rec, bad)
			assert.False(t, ok)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeEnvelope(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
		})
	}
}

func TestWriteValidationError_PlainErrorDegrades(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteValidationError(rec, errors.New("quantity missing"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
}
