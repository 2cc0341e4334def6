package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dicomviewer/pkg/requestcontext"
)

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (Result, error) {
	return Result{}, errors.New("store down")
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestFrom(ip string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/dicom-metadata", nil)
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), ip, "test"))
}

func TestMiddleware_LimitsPerClient(t *testing.T) {
	h := New(NewInMemoryStore(), 2, time.Minute).Handler(okHandler())

	for i := range 2 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("10.0.0.1"))
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"error":"rate_limited"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("10.0.0.2"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddleware_FailsOpen(t *testing.T) {
	h := New(failingStore{}, 1, time.Minute).Handler(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("10.0.0.1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestMiddleware_DisabledIsPassthrough(t *testing.T) {
	next := okHandler()
	got := New(failingStore{}, 0, time.Minute).Handler(next)
	rec := httptest.NewRecorder()
	got.ServeHTTP(rec, requestFrom("10.0.0.1"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 1, retryAfterSeconds(0))
	assert.Equal(t, 1, retryAfterSeconds(200*time.Millisecond))
	assert.Equal(t, 3, retryAfterSeconds(2100*time.Millisecond))
}
