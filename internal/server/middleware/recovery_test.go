package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/ground/pkg/api"
)

func TestRecoveryMiddleware(t *testing.T) {
	tests := []struct {
		panicValue any
		name       string
	}{
		{name: "string panic", panicValue: "something went wrong"},
		{name: "error panic", panicValue: assert.AnError},
		{name: "nil map write", panicValue: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.panicValue == nil {
					var m map[string]int
					m["boom"] = 1
				}
				panic(tt.panicValue)
			})

			w := httptest.NewRecorder()
			require.NotPanics(t, func() {
				RecoveryMiddleware(bufferLogger(&buf))(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/projects/p-1", nil))
			})

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			var resp api.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, "internal server error", resp.Message)

			output := buf.String()
			assert.Contains(t, output, "Panic recovered")
			assert.Contains(t, output, "stack=")
			assert.Contains(t, output, "path=/api/v1/projects/p-1")
		})
	}
}

func TestRecoveryMiddleware_PassesThrough(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	w := httptest.NewRecorder()
	RecoveryMiddleware(discardLogger())(next).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRecoveryMiddleware_RepanicsAbortHandler(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	})

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		RecoveryMiddleware(discardLogger())(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
