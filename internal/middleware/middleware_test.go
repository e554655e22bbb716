package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	router := gin.New()
	router.Use(CORSMiddleware())
	router.POST("/v1/transits", func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/v1/transits", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Idempotency-Key")
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	router := gin.New()
	router.Use(RequestLogger(zap.New(core)))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Request-ID", "req-42")
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, "req-42", entries[0].ContextMap()["request_id"])
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
}

func newIdempotentRouter(t *testing.T, status int) (*gin.Engine, *int32) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	var calls int32
	router := gin.New()
	router.Use(IdempotencyMiddleware(client, zap.NewNop()))
	router.POST("/v1/transits/:id/complete", func(c *gin.Context) {
		n := atomic.AddInt32(&calls, 1)
		c.JSON(status, gin.H{"call": n})
	})
	return router, &calls
}

func post(router *gin.Engine, path, key string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader("{}"))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotencyMiddleware_ReplaysResponse(t *testing.T) {
	router, calls := newIdempotentRouter(t, http.StatusOK)

	first := post(router, "/v1/transits/t-1/complete", "key-1")
	second := post(router, "/v1/transits/t-1/complete", "key-1")

	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
}

func TestIdempotencyMiddleware_KeyIsScopedToPath(t *testing.T) {
	router, calls := newIdempotentRouter(t, http.StatusOK)

	post(router, "/v1/transits/t-1/complete", "key-1")
	post(router, "/v1/transits/t-2/complete", "key-1")

	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestIdempotencyMiddleware_LockedIsNotStored(t *testing.T) {
	router, calls := newIdempotentRouter(t, http.StatusLocked)

	post(router, "/v1/transits/t-1/complete", "key-1")
	post(router, "/v1/transits/t-1/complete", "key-1")

	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestIdempotencyMiddleware_WithoutKeyOrClient(t *testing.T) {
	router, calls := newIdempotentRouter(t, http.StatusOK)

	post(router, "/v1/transits/t-1/complete", "")
	post(router, "/v1/transits/t-1/complete", "")
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))

	bare := gin.New()
	bare.Use(IdempotencyMiddleware(nil, nil))
	bare.POST("/x", func(c *gin.Context) { c.Status(http.StatusCreated) })
	assert.Equal(t, http.StatusCreated, post(bare, "/x", "key-1").Code)
}
