package middleware

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
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func ok() HealthChecker { return CheckerFunc(func(context.Context) error { return nil }) }

func TestReadiness_ReportsEachCheck(t *testing.T) {
	h := NewReadiness(time.Second).
		Add("database", ok()).
		Add("storage", CheckerFunc(func(context.Context) error { return errors.New("bucket resumes missing") })).
		Add("queue", nil)

	rep := h.Run(context.Background())
	assert.Equal(t, "unhealthy", rep.Status)
	require.Len(t, rep.Checks, 2)
	assert.Equal(t, "healthy", rep.Checks["database"].Status)
	assert.Equal(t, "bucket resumes missing", rep.Checks["storage"].Message)
}

func TestReadiness_CheckTimeout(t *testing.T) {
	h := NewReadiness(20 * time.Millisecond).Add("queue", CheckerFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	rep := h.Run(context.Background())
	assert.Equal(t, "unhealthy", rep.Checks["queue"].Status)
}

func TestReadiness_Handlers(t *testing.T) {
	down := NewReadiness(time.Second).Add("database", CheckerFunc(func(context.Context) error { return errors.New("refused") }))
	up := NewReadiness(time.Second).Add("database", ok())

	w := httptest.NewRecorder()
	down.ReadyHandler(w, httptest.NewRequest(http.MethodGet, "/healthz/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "not_ready", body["status"])
	assert.NotContains(t, body, "checks")

	w = httptest.NewRecorder()
	up.HealthHandler(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	var rep Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rep))
	assert.Equal(t, "healthy", rep.Checks["database"].Status)
}

func TestLoggingMiddleware_LogsPrincipalFromAuth(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := LoggingMiddleware(zap.New(core))(APIKeyAuth(map[string]string{"web": "k1"})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }),
	))

	req := httptest.NewRequest(http.MethodGet, "/bounties", nil)
	req.Header.Set("Authorization", "Bearer k1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "web", entries[0].ContextMap()["principal"])
	assert.Equal(t, int64(http.StatusNoContent), entries[0].ContextMap()["status"])
}
