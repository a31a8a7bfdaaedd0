package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/ground/internal/models"
	"github.com/iudanet/ground/internal/server/handlers"
	"github.com/iudanet/ground/pkg/api"
)

func TestRateLimiter_Allow(t *testing.T) {
	limiter := NewRateLimiter(3, time.Minute, discardLogger())
	defer limiter.Stop()

	now := time.Now()
	for i := 0; i < 3; i++ {
		assert.True(t, limiter.allowAt("10.0.0.1", now), "request %d", i+1)
	}
	assert.False(t, limiter.allowAt("10.0.0.1", now))

	// Ключи считаются независимо
	assert.True(t, limiter.allowAt("10.0.0.2", now))

	// Новое окно восстанавливает лимит
	assert.True(t, limiter.allowAt("10.0.0.1", now.Add(time.Minute)))
}

func TestRateLimiter_CleanupOldBuckets(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute, discardLogger())
	defer limiter.Stop()

	now := time.Now()
	limiter.allowAt("old", now.Add(-3*time.Minute))
	limiter.allowAt("fresh", now)

	limiter.cleanupOldBuckets(now)

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.NotContains(t, limiter.buckets, "old")
	assert.Contains(t, limiter.buckets, "fresh")
}

func TestRateLimiter_StopTwice(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute, discardLogger())
	limiter.Stop()
	assert.NotPanics(t, limiter.Stop)
}

func TestRateLimiter_Middleware(t *testing.T) {
	var buf bytes.Buffer
	limiter := NewRateLimiter(2, time.Minute, bufferLogger(&buf))
	defer limiter.Stop()

	handler := limiter.Middleware(ByClientIP)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/projects/p-1", nil)
		req.RemoteAddr = "192.168.1.5:40000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, do().Code)
	assert.Equal(t, http.StatusOK, do().Code)

	w := do()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	var resp api.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "rate limit exceeded, please try again later", resp.Message)
	assert.Contains(t, buf.String(), "key=192.168.1.5")
}

func TestByUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	assert.Empty(t, ByUser(req))

	req = req.WithContext(handlers.WithUser(req.Context(), models.User{ID: "user-1"}))
	assert.Equal(t, "user-1", ByUser(req))
}

func TestRateLimiter_Middleware_EmptyKeyNotLimited(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute, discardLogger())
	defer limiter.Stop()

	handler := limiter.Middleware(ByUser)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expectedIP string
	}{
		{name: "remote addr", remoteAddr: "192.168.1.1:12345", expectedIP: "192.168.1.1"},
		{
			name:       "forwarded chain",
			headers:    map[string]string{"X-Forwarded-For": "192.168.1.1, 10.0.0.1"},
			remoteAddr: "10.0.0.2:1",
			expectedIP: "192.168.1.1",
		},
		{
			name:       "real ip",
			headers:    map[string]string{"X-Real-IP": "192.168.2.1"},
			remoteAddr: "10.0.0.2:1",
			expectedIP: "192.168.2.1",
		},
		{name: "no port", remoteAddr: "192.168.3.1", expectedIP: "192.168.3.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.expectedIP, getClientIP(req))
		})
	}
}
