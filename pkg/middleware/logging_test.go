package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sugat009/ecommerce-site-with-graphql/pkg/logger"
)

func TestRequestLogging_GeneratesCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	var seen string
	handler := RequestLogging(logger.NewWithWriter("test-svc", "debug", &buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.CorrelationIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/state", nil))

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get(CorrelationIDHeader))

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "http request", out["msg"])
	assert.Equal(t, seen, out["correlation_id"])
	assert.Equal(t, float64(http.StatusOK), out["status"])
	assert.Equal(t, "INFO", out["level"])
}

func TestRequestLogging_EchoesIncomingCorrelationID(t *testing.T) {
	handler := RequestLogging(logger.Discard())(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CorrelationIDHeader, "corr-from-ui")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, "corr-from-ui", rr.Header().Get(CorrelationIDHeader))
}

func TestRequestLogging_LevelByStatus(t *testing.T) {
	tests := []struct {
		path   string
		status int
		want   slog.Level
	}{
		{"/api/v1/state", http.StatusOK, slog.LevelInfo},
		{"/api/v1/state/wishlist", http.StatusNotFound, slog.LevelWarn},
		{"/api/v1/mutations/addItemToCart", http.StatusInternalServerError, slog.LevelError},
		{"/health/ready", http.StatusOK, slog.LevelDebug},
		{"/health/ready", http.StatusServiceUnavailable, slog.LevelError},
		{"/metrics", http.StatusOK, slog.LevelDebug},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, levelFor(tt.path, tt.status), "%s %d", tt.path, tt.status)
	}
}

func TestRecovery_ReturnsErrorEnvelope(t *testing.T) {
	var buf bytes.Buffer
	handler := Recovery(logger.NewWithWriter("test-svc", "error", &buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	ctx := logger.WithCorrelationID(httptest.NewRequest(http.MethodGet, "/", nil).Context(), "corr-1")
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":{"code":"INTERNAL_ERROR","message":"an internal error occurred","request_id":"corr-1"}}`, rr.Body.String())
	assert.Contains(t, buf.String(), "panic recovered")
}

func TestRecovery_RepanicsOnAbortHandler(t *testing.T) {
	handler := Recovery(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestNoStore(t *testing.T) {
	rr := httptest.NewRecorder()
	NoStore(okHandler()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/state", nil))

	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
}
