package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/ground/internal/models"
	"github.com/iudanet/ground/internal/server/handlers"
)

func bufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{name: "success", status: http.StatusOK, wantLevel: "level=INFO"},
		{name: "client error", status: http.StatusConflict, wantLevel: "level=WARN"},
		{name: "server error", status: http.StatusInternalServerError, wantLevel: "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("body"))
			})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/projects/p-1/mutations", nil)
			w := httptest.NewRecorder()
			LoggingMiddleware(bufferLogger(&buf))(next).ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			output := buf.String()
			assert.Contains(t, output, tt.wantLevel)
			assert.Contains(t, output, "method=POST")
			assert.Contains(t, output, "path=/api/v1/projects/p-1/mutations")
			assert.Contains(t, output, "bytes_written=4")
			assert.NotContains(t, output, "user_id=")
		})
	}
}

func TestLoggingMiddleware_LogsQueryAndUser(t *testing.T) {
	var buf bytes.Buffer
	logger := bufferLogger(&buf)

	token, err := handlers.IssueToken(testJWTConfig, models.User{ID: "user-1"})
	require.NoError(t, err)

	handler := LoggingMiddleware(logger)(AuthMiddleware(logger, testJWTConfig)(userEcho(t)))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects/p-1/changes?since=12", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	output := buf.String()
	assert.Contains(t, output, `query="since=12"`)
	assert.Contains(t, output, "user_id=user-1")
	assert.NotContains(t, output, token)
}

func TestLoggingWithSkip(t *testing.T) {
	var buf bytes.Buffer
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handler := LoggingWithSkip(bufferLogger(&buf), []string{"/api/v1/health"})(next)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Empty(t, buf.String())

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/projects/p-1", nil))
	assert.Contains(t, buf.String(), "path=/api/v1/projects/p-1")
}

func TestResponseWriter_CapturesStatusAndBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusAccepted)
	n, err := rw.Write([]byte("hello"))
	require.NoError(t, err)
	_, err = rw.Write([]byte(" world"))
	require.NoError(t, err)

	assert.Equal(t, 5, n)
	assert.Equal(t, http.StatusAccepted, rw.statusCode)
	assert.Equal(t, int64(11), rw.written)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}
