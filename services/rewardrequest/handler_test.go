package rewardrequest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v10"
	"github.com/stretchr/testify/require"

	"smallbiznis-promotion/pkg/middleware"
	"smallbiznis-promotion/pkg/rediskey"
)

type countingLimiter struct {
	max  int
	seen map[string]int
}

func (l *countingLimiter) Allow(_ context.Context, key string, _ redis_rate.Limit) (*redis_rate.Result, error) {
	l.seen[key]++
	allowed := 1
	if l.seen[key] > l.max {
		allowed = 0
	}
	return &redis_rate.Result{Allowed: allowed, Remaining: max(l.max-l.seen[key], 0), RetryAfter: time.Second}, nil
}

func newTestRouter(t *testing.T, f *fixture, limiter middleware.Limiter) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(middleware.Error())
	NewHandler(f.svc, limiter, redis_rate.PerMinute(1)).RegisterRoutes(r.Group("/v1"))
	return r
}

func call(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) RewardRequest {
	t.Helper()
	var rr RewardRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rr))
	return rr
}

func TestHandler_Lifecycle(t *testing.T) {
	f := newFixture(t)
	r := newTestRouter(t, f, nil)

	rec := call(r, http.MethodPost, "/v1/reward-requests", `{"eventRewardId":"`+linkID+`","userId":"u1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode(t, rec).ID

	rec = call(r, http.MethodPost, "/v1/reward-requests", `{"eventRewardId":"`+linkID+`","userId":"u1"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), MsgDuplicate)

	rec = call(r, http.MethodPost, "/v1/reward-requests/"+id+"/approve", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, StatusApproved, decode(t, rec).Status)

	rec = call(r, http.MethodPost, "/v1/reward-requests/"+id+"/reject", `{"reason":"late"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "FAILED_PRECONDITION")

	rec = call(r, http.MethodPost, "/v1/reward-requests/"+id+"/process", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(r, http.MethodPost, "/v1/reward-requests/"+id+"/result", `{"status":"FAILED","reason":"Miss"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rr := decode(t, rec)
	require.Equal(t, StatusFailed, rr.Status)
	require.Equal(t, "Miss", *rr.Reason)

	rec = call(r, http.MethodGet, "/v1/reward-requests/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, StatusFailed, decode(t, rec).Status)

	rec = call(r, http.MethodGet, "/v1/reward-requests/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_CreateConditionNotMet(t *testing.T) {
	f := newFixture(t)
	f.conditions.result.Success = false
	r := newTestRouter(t, f, nil)

	rec := call(r, http.MethodPost, "/v1/reward-requests", `{"eventRewardId":"`+linkID+`","userId":"u1"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), MsgConditionNotMet)
}

func TestHandler_CreateIsRateLimitedPerUser(t *testing.T) {
	f := newFixture(t)
	limiter := &countingLimiter{max: 1, seen: map[string]int{}}
	r := newTestRouter(t, f, limiter)

	rec := call(r, http.MethodPost, "/v1/reward-requests", `{"eventRewardId":"`+linkID+`","userId":"u1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = call(r, http.MethodPost, "/v1/reward-requests", `{"eventRewardId":"`+linkID+`","userId":"u1"}`)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = call(r, http.MethodPost, "/v1/reward-requests", `{"eventRewardId":"`+linkID+`","userId":"u2"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Equal(t, 2, limiter.seen[rediskey.RewardRequestRate("u1")])
}
