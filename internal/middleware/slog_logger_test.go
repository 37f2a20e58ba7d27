package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/transit-bot/internal/middleware"
)

// serve runs one request through the middleware wrapped around a handler
// answering with status, and returns the decoded log line (nil if none).
func serve(t *testing.T, level slog.Level, path string, status int, quiet ...string) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level}))

	h := middleware.NewSlogLogger(logger, quiet...)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}),
	)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	// Simulate what chimiddleware.RequestID does: inject a known ID into context.
	ctx := context.WithValue(req.Context(), chimiddleware.RequestIDKey, "test-req-id")
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, status, rec.Code)

	if buf.Len() == 0 {
		return nil
	}
	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	return logEntry
}

// TestSlogLogger_logsRequestFields verifies that the SlogLogger middleware
// writes a structured JSON log line containing method, path, status, duration,
// and the request ID placed in context by chi's RequestID middleware.
func TestSlogLogger_logsRequestFields(t *testing.T) {
	logEntry := serve(t, slog.LevelInfo, "/debug/directory", http.StatusOK)

	require.NotNil(t, logEntry)
	require.Equal(t, "INFO", logEntry["level"])
	require.Equal(t, "GET", logEntry["method"])
	require.Equal(t, "/debug/directory", logEntry["path"])
	require.EqualValues(t, http.StatusOK, logEntry["status"])
	require.Equal(t, "test-req-id", logEntry["request_id"])
	require.NotNil(t, logEntry["duration_ms"])
}

// TestSlogLogger_levelFollowsStatus verifies the status to level mapping.
func TestSlogLogger_levelFollowsStatus(t *testing.T) {
	require.Equal(t, "WARN", serve(t, slog.LevelInfo, "/nope", http.StatusNotFound)["level"])
	require.Equal(t, "ERROR", serve(t, slog.LevelInfo, "/boom", http.StatusInternalServerError)["level"])
}

// TestSlogLogger_quietPaths verifies that quiet paths drop to Debug and are
// filtered out at the default Info level, unless they fail.
func TestSlogLogger_quietPaths(t *testing.T) {
	require.Nil(t, serve(t, slog.LevelInfo, "/healthz", http.StatusOK, "/healthz"))
	require.Equal(t, "DEBUG", serve(t, slog.LevelDebug, "/healthz", http.StatusOK, "/healthz")["level"])
	require.Equal(t, "ERROR", serve(t, slog.LevelInfo, "/healthz", http.StatusServiceUnavailable, "/healthz")["level"])
}
