package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func probe(t *testing.T, h http.HandlerFunc) (int, Report) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	var rep Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	return rec.Code, rep
}

func TestLiveness_AlwaysUp(t *testing.T) {
	h := NewHandler()
	code, rep := probe(t, h.LivenessHandler())

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusUp, rep.Status)
	assert.Empty(t, rep.Checks)
}

func TestReadiness_NoCheckersIsReady(t *testing.T) {
	h := NewHandler()
	code, rep := probe(t, h.ReadinessHandler())

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusUp, rep.Status)
}

func TestReadiness_AllDependenciesUp(t *testing.T) {
	h := NewHandler()
	h.Register("redis", func(context.Context) error { return nil })
	h.Register("kafka", func(context.Context) error { return nil })

	code, rep := probe(t, h.ReadinessHandler())

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusUp, rep.Status)
	assert.Equal(t, StatusUp, rep.Checks["redis"].Status)
	assert.Equal(t, StatusUp, rep.Checks["kafka"].Status)
}

func TestReadiness_OneDependencyDown(t *testing.T) {
	h := NewHandler()
	h.Register("redis", func(context.Context) error { return nil })
	h.Register("kafka", func(context.Context) error {
		return errors.New("broker unreachable")
	})

	code, rep := probe(t, h.ReadinessHandler())

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, StatusDown, rep.Status)
	assert.Equal(t, StatusUp, rep.Checks["redis"].Status)
	assert.Equal(t, StatusDown, rep.Checks["kafka"].Status)
	assert.Equal(t, "broker unreachable", rep.Checks["kafka"].Error)
}

func TestReadiness_ChecksRunConcurrently(t *testing.T) {
	h := NewHandler()
	slow := func(ctx context.Context) error {
		select {
		case <-time.After(100 * time.Millisecond):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	h.Register("redis", slow)
	h.Register("kafka", slow)
	h.Register("backend", slow)

	start := time.Now()
	code, _ := probe(t, h.ReadinessHandler())
	elapsed := time.Since(start)

	assert.Equal(t, http.StatusOK, code)
	assert.Less(t, elapsed, 250*time.Millisecond, "checks should not run back to back")
}

func TestRegister_ReplacesChecker(t *testing.T) {
	h := NewHandler()
	h.Register("redis", func(context.Context) error { return errors.New("down") })
	h.Register("redis", func(context.Context) error { return nil })

	code, rep := probe(t, h.ReadinessHandler())

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusUp, rep.Checks["redis"].Status)
}
