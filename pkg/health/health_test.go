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

func up(context.Context) error { return nil }

func down(context.Context) error { return errors.New("dial tcp: connection refused") }

func serve(t *testing.T, h http.HandlerFunc) (int, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	return rec.Code, resp
}

func TestLiveness(t *testing.T) {
	h := NewHandler()
	h.RegisterCritical("postgres", down)

	code, resp := serve(t, h.LivenessHandler())
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusUp, resp.Status)
	assert.Empty(t, resp.Checks)
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name       string
		postgres   Checker
		redis      Checker
		wantCode   int
		wantStatus Status
	}{
		{"all up", up, up, http.StatusOK, StatusUp},
		{"cache down degrades", up, down, http.StatusOK, StatusDegraded},
		{"database down", down, up, http.StatusServiceUnavailable, StatusDown},
		{"both down", down, down, http.StatusServiceUnavailable, StatusDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler()
			h.RegisterCritical("postgres", tt.postgres)
			h.RegisterNonCritical("redis", tt.redis)

			code, resp := serve(t, h.ReadinessHandler())
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStatus, resp.Status)
			require.Len(t, resp.Checks, 2)
			assert.True(t, resp.Checks["postgres"].Critical)
			assert.False(t, resp.Checks["redis"].Critical)
		})
	}
}

func TestReadiness_ReportsErrorAndRunsInParallel(t *testing.T) {
	h := NewHandler()
	slow := func(ctx context.Context) error {
		select {
		case <-time.After(150 * time.Millisecond):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	h.RegisterCritical("postgres", slow)
	h.RegisterNonCritical("redis", slow)
	h.RegisterNonCritical("kafka", down)

	start := time.Now()
	code, resp := serve(t, h.ReadinessHandler())
	assert.Less(t, time.Since(start), 280*time.Millisecond)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "dial tcp: connection refused", resp.Checks["kafka"].Error)
	assert.GreaterOrEqual(t, resp.Checks["redis"].LatencyMS, int64(140))
}
