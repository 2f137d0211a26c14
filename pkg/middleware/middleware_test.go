package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v10"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"smallbiznis-promotion/pkg/errutil"
)

func init() {
	gin.SetMode(gin.TestMode)
	zap.ReplaceGlobals(zap.NewNop())
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(Error())
	r.GET("/x", handlers...)
	return r
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestErrorRendersBaseError(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		Abort(c, errutil.FailedPrecondition("Only PENDING requests can be rejected", nil))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeError(t, rec)
	require.Equal(t, "FAILED_PRECONDITION", body["code"])
	require.Equal(t, "Only PENDING requests can be rejected", body["message"])
}

func TestErrorHidesUnknownErrors(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		Abort(c, errors.New("pq: password authentication failed"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	require.Equal(t, "INTERNAL", body["code"])
	require.NotContains(t, rec.Body.String(), "password")
}

type fakeLimiter struct {
	allowed int
	err     error
	keys    []string
}

func (f *fakeLimiter) Allow(_ context.Context, key string, _ redis_rate.Limit) (*redis_rate.Result, error) {
	f.keys = append(f.keys, key)
	if f.err != nil {
		return nil, f.err
	}
	return &redis_rate.Result{Allowed: f.allowed, Remaining: f.allowed, RetryAfter: time.Second}, nil
}

func TestRateLimit(t *testing.T) {
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }
	key := func(c *gin.Context) string { return c.Query("user") }

	denied := &fakeLimiter{allowed: 0}
	r := newEngine(RateLimit(denied, redis_rate.PerMinute(1), key), ok)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x?user=u1", nil))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, []string{"u1"}, denied.keys)
	require.Equal(t, "2", rec.Header().Get("Retry-After"))

	allowed := &fakeLimiter{allowed: 1}
	r = newEngine(RateLimit(allowed, redis_rate.PerMinute(1), key), ok)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x?user=u1", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	broken := &fakeLimiter{err: errors.New("redis down")}
	r = newEngine(RateLimit(broken, redis_rate.PerMinute(1), key), ok)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x?user=u1", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	r = newEngine(RateLimit(denied, redis_rate.PerMinute(1), key), ok)
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, http.StatusNoContent, rec.Code, "requests without a key are not limited")
}
