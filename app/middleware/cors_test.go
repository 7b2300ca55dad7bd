package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORSHandler(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("Wildcard allows any origin", func(t *testing.T) {
		cors := NewCORS([]string{"*"})
		req := httptest.NewRequest("GET", "/api/products", nil)
		req.Header.Set("Origin", "https://shop.example.com")
		rec := httptest.NewRecorder()

		cors.Handler(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://shop.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Listed origin is allowed", func(t *testing.T) {
		cors := NewCORS([]string{"https://shop.example.com"})
		req := httptest.NewRequest("GET", "/api/products", nil)
		req.Header.Set("Origin", "https://shop.example.com")
		rec := httptest.NewRecorder()

		cors.Handler(next).ServeHTTP(rec, req)

		assert.Equal(t, "https://shop.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Unlisted origin gets no CORS headers", func(t *testing.T) {
		cors := NewCORS([]string{"https://shop.example.com"})
		req := httptest.NewRequest("GET", "/api/products", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()

		cors.Handler(next).ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Preflight is answered without calling next", func(t *testing.T) {
		nextCalled := false
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nextCalled = true
		})
		cors := NewCORS([]string{"*"})
		req := httptest.NewRequest("OPTIONS", "/api/products", nil)
		req.Header.Set("Origin", "https://shop.example.com")
		rec := httptest.NewRecorder()

		cors.Handler(inner).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.False(t, nextCalled)
	})
}
