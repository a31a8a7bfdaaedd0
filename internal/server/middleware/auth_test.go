package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/ground/internal/models"
	"github.com/iudanet/ground/internal/server/handlers"
	"github.com/iudanet/ground/pkg/api"
)

var testJWTConfig = handlers.JWTConfig{
	Secret: []byte("test-secret-key-for-jwt"),
	TTL:    15 * time.Minute,
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// userEcho отвечает ID пользователя из контекста
func userEcho(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := handlers.UserFromContext(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte(user.ID))
	})
}

func TestAuthMiddleware_Success(t *testing.T) {
	user := models.User{ID: "user-1", DisplayName: "Surveyor", Email: "s@example.com"}
	token, err := handlers.IssueToken(testJWTConfig, user)
	require.NoError(t, err)

	var got models.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = handlers.UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects/p-1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	AuthMiddleware(discardLogger(), testJWTConfig)(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, user, got)
}

func TestAuthMiddleware_Rejected(t *testing.T) {
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, api.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    api.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString(testJWTConfig.Secret)
	require.NoError(t, err)

	foreign, err := handlers.IssueToken(handlers.JWTConfig{Secret: []byte("other-secret")}, models.User{ID: "user-1"})
	require.NoError(t, err)

	tests := []struct {
		name        string
		header      string
		wantMessage string
	}{
		{name: "missing header", header: "", wantMessage: "missing token"},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", wantMessage: "invalid token format"},
		{name: "no token", header: "Bearer", wantMessage: "invalid token format"},
		{name: "garbage token", header: "Bearer abc.def.ghi", wantMessage: "invalid token"},
		{name: "expired token", header: "Bearer " + expired, wantMessage: "invalid token"},
		{name: "wrong secret", header: "Bearer " + foreign, wantMessage: "invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

			req := httptest.NewRequest(http.MethodGet, "/api/v1/projects/p-1", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			AuthMiddleware(discardLogger(), testJWTConfig)(next).ServeHTTP(w, req)

			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var resp api.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.wantMessage, resp.Message)
		})
	}
}

func TestAuthMiddleware_CaseInsensitiveScheme(t *testing.T) {
	token, err := handlers.IssueToken(testJWTConfig, models.User{ID: "user-7"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer "+token)
	w := httptest.NewRecorder()

	AuthMiddleware(discardLogger(), testJWTConfig)(userEcho(t)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-7", w.Body.String())
}
