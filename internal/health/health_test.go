package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryEvaluate(t *testing.T) {
	reg := NewRegistry()
	reg.Register("self", func(context.Context) error { return nil })
	reg.Register("timezone_offset", func(context.Context) error { return errors.New("bad offset") })

	assert.Equal(t, []string{"self", "timezone_offset"}, reg.Names())

	result := reg.Evaluate(context.Background())
	assert.False(t, result.Healthy())
	assert.Equal(t, "degraded", result.Status)
	assert.True(t, result.Checks["self"].Healthy)
	assert.Equal(t, "bad offset", result.Checks["timezone_offset"].Error)
	assert.NotEmpty(t, result.Checks["self"].Latency)
}

func TestRegistryReplaceProbe(t *testing.T) {
	reg := NewRegistry()
	reg.Register("self", func(context.Context) error { return errors.New("down") })
	reg.Register("self", func(context.Context) error { return nil })

	assert.True(t, reg.Evaluate(context.Background()).Healthy())
}

func TestHandler(t *testing.T) {
	tests := []struct {
		name       string
		probeErr   error
		wantStatus int
		wantLabel  string
	}{
		{"healthy", nil, http.StatusOK, "ok"},
		{"unhealthy", errors.New("bad offset"), http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			probeErr := tt.probeErr
			reg.Register("timezone_offset", func(context.Context) error { return probeErr })

			rec := httptest.NewRecorder()
			Handler(reg)(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var result Result
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
			assert.Equal(t, tt.wantLabel, result.Status)
			assert.Contains(t, result.Checks, "timezone_offset")
		})
	}
}

func TestEmptyRegistryIsHealthy(t *testing.T) {
	result := NewRegistry().Evaluate(context.Background())
	assert.True(t, result.Healthy())
	assert.Empty(t, result.Checks)
}
