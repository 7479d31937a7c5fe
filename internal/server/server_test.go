package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/otherjamesbrown/ai-aas/services/status-service/internal/config"
	"github.com/otherjamesbrown/ai-aas/services/status-service/internal/health"
	"github.com/otherjamesbrown/ai-aas/services/status-service/internal/observability"
	"github.com/otherjamesbrown/ai-aas/services/status-service/internal/status"
)

func newTestRouter(t *testing.T, payload config.Payload) http.Handler {
	t.Helper()
	logger := zaptest.NewLogger(t)
	return NewRouter(Options{
		Logger: logger,
		Status: status.NewHandler(status.Options{
			Source: config.StaticSource(payload),
			Logger: logger,
		}),
	})
}

func defaultPayload() config.Payload {
	return config.Payload{Greeting: "Hello World", TimezoneOffset: "+05:30", SecretMessage: "N/A"}
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func assertCORS(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Methods"))
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Headers"))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "body: %s", rec.Body.String())
	return body
}

func TestGetStatus(t *testing.T) {
	router := newTestRouter(t, defaultPayload())

	rec := do(t, router, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assertCORS(t, rec)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get(observability.RequestIDHeader))

	var payload status.Payload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "ok", payload.Status)
	assert.Equal(t, "Hello World", payload.Message)
	assert.Equal(t, "N/A", payload.Secret)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`, payload.Timestamp)
}

func TestCORSAnyOrigin(t *testing.T) {
	router := newTestRouter(t, defaultPayload())

	for _, origin := range []string{"", "https://example.com", "http://localhost:3000", "null"} {
		origin := origin
		t.Run("origin="+origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if origin != "" {
				req.Header.Set("Origin", origin)
			}
			rec := do(t, router, req)

			require.Equal(t, http.StatusOK, rec.Code)
			assertCORS(t, rec)
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Methods"))
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Headers"))
		})
	}
}

func TestPreflight(t *testing.T) {
	router := newTestRouter(t, defaultPayload())

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "PUT")
	req.Header.Set("Access-Control-Request-Headers", "X-Custom, Authorization")
	rec := do(t, router, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assertCORS(t, rec)
	assert.Equal(t, "PUT", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "X-Custom, Authorization", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
}

func TestPreflightWithoutRequestHeaders(t *testing.T) {
	router := newTestRouter(t, defaultPayload())

	rec := do(t, router, httptest.NewRequest(http.MethodOptions, "/anything", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestNotFound(t *testing.T) {
	router := newTestRouter(t, defaultPayload())

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set(observability.RequestIDHeader, "req-404")
	rec := do(t, router, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assertCORS(t, rec)
	body := decodeError(t, rec)
	assert.Equal(t, "NOT_FOUND", body["code"])
	assert.Equal(t, "req-404", body["request_id"])
}

func TestMethodNotAllowed(t *testing.T) {
	router := newTestRouter(t, defaultPayload())

	rec := do(t, router, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assertCORS(t, rec)
	assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, rec)["code"])
}

func TestMalformedOffsetKeepsServing(t *testing.T) {
	payload := defaultPayload()
	payload.TimezoneOffset = "bad"
	router := newTestRouter(t, payload)

	for i := 0; i < 3; i++ {
		rec := do(t, router, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assertCORS(t, rec)

		body := decodeError(t, rec)
		assert.Equal(t, "CONFIG_INVALID", body["code"])
		assert.NotEmpty(t, body["request_id"])
	}

	// Unrelated routes are unaffected.
	rec := do(t, router, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPanicIsRecovered(t *testing.T) {
	router := NewRouter(Options{
		Logger: zaptest.NewLogger(t),
		Status: http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}),
	})

	rec := do(t, router, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assertCORS(t, rec)
}

func TestRequestMetrics(t *testing.T) {
	router := newTestRouter(t, defaultPayload())
	ok := observability.HTTPRequests().WithLabelValues(http.MethodGet, "/", "200")
	missing := observability.HTTPRequests().WithLabelValues(http.MethodGet, "unmatched", "404")

	okBefore := testutil.ToFloat64(ok)
	missingBefore := testutil.ToFloat64(missing)

	do(t, router, httptest.NewRequest(http.MethodGet, "/", nil))
	do(t, router, httptest.NewRequest(http.MethodGet, "/", nil))
	do(t, router, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, okBefore+2, testutil.ToFloat64(ok))
	assert.Equal(t, missingBefore+1, testutil.ToFloat64(missing))
}

func TestNewSetsTimeouts(t *testing.T) {
	srv := New(Options{Address: ":0", Status: http.NotFoundHandler()})

	assert.Equal(t, ":0", srv.Addr)
	assert.Equal(t, readHeaderTimeout, srv.ReadHeaderTimeout)
	assert.Equal(t, writeTimeout, srv.WriteTimeout)
	assert.NotNil(t, srv.Handler)
}

func TestAdminHealthz(t *testing.T) {
	reg := health.NewRegistry()
	reg.Register("self", func(ctx context.Context) error { return nil })
	router := NewAdminRouter(AdminOptions{Health: reg})

	rec := do(t, router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var result health.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "ok", result.Status)

	cfg := &config.Config{Payload: config.Payload{TimezoneOffset: "25:00"}}
	reg.Register("timezone_offset", func(ctx context.Context) error { return cfg.OffsetError() })

	rec = do(t, router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "degraded", result.Status)
	assert.False(t, result.Checks["timezone_offset"].Healthy)
}

func TestAdminMetrics(t *testing.T) {
	observability.RecordConfigError(status.OffsetField)
	router := NewAdminRouter(AdminOptions{})

	rec := do(t, router, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "status_service_config_errors_total")
}
