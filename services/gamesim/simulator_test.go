package gamesim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"smallbiznis-promotion/pkg/config"
	"smallbiznis-promotion/pkg/middleware"
	"smallbiznis-promotion/pkg/taskname"
	"smallbiznis-promotion/services/game"
)

type enqueued struct {
	task *asynq.Task
	opts []asynq.Option
}

// steps records, in order, every callback the simulator delivers.
type steps struct {
	mu  sync.Mutex
	log []string
}

func (s *steps) add(step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, step)
}

func (s *steps) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.log...)
}

type fakeEnqueuer struct {
	steps  *steps
	sent   []enqueued
	failOn string
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, t *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if t.Type() == f.failOn {
		return nil, errors.New("queue unavailable")
	}
	if f.steps != nil {
		f.steps.add(t.Type())
	}
	f.sent = append(f.sent, enqueued{task: t, opts: opts})
	return &asynq.TaskInfo{ID: "x"}, nil
}

func newSimulator(enq *fakeEnqueuer, roll float64) *Simulator {
	cfg := &config.Config{}
	cfg.Simulator.DefaultValue = 7
	cfg.Simulator.Fields = map[string]float64{"level": 12}
	cfg.Simulator.ResultDelay = 5 * time.Second
	cfg.Simulator.FailureRate = 0.1
	cfg.Simulator.CallbackTimeout = time.Second

	s := NewSimulator(cfg, enq, nil)
	s.roll = func() float64 { return roll }
	return s
}

// newPromotion answers the processing callback with status and records it.
func newPromotion(t *testing.T, rec *steps, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		rec.add(fmt.Sprintf("%s %s %v", r.Method, r.URL.Path, body["rewardRequestId"]))
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func grantTask(t *testing.T, processing game.Callback) *asynq.Task {
	t.Helper()
	cb := map[string]any{"rewardRequestId": "rr-1"}
	processing.Payload = cb
	b, err := json.Marshal(game.GrantPayload{
		UserID:     "u1",
		RewardID:   "rw-1",
		Processing: processing,
		Callback:   game.Callback{Cmd: taskname.RewardRequestResult, Queue: "promotion", Payload: cb},
	})
	require.NoError(t, err)
	return asynq.NewTask(taskname.GameRewardProcess, b)
}

func processURL(srv *httptest.Server) game.Callback {
	return game.Callback{URL: srv.URL + "/v1/reward-requests/rr-1/process"}
}

func body(t *testing.T, task *asynq.Task) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(task.Payload(), &m))
	return m
}

func option(opts []asynq.Option, typ asynq.OptionType) any {
	for _, o := range opts {
		if o.Type() == typ {
			return o.Value()
		}
	}
	return nil
}

func TestSimulator_ResultFollowsAcceptedProcessing(t *testing.T) {
	rec := &steps{}
	srv := newPromotion(t, rec, http.StatusOK)
	enq := &fakeEnqueuer{steps: rec}

	require.NoError(t, newSimulator(enq, 0.5).HandleGrantTask(context.Background(), grantTask(t, processURL(srv))))

	require.Equal(t, []string{
		"POST /v1/reward-requests/rr-1/process rr-1",
		taskname.RewardRequestResult,
	}, rec.all())

	require.Len(t, enq.sent, 1)
	result := enq.sent[0]
	require.Equal(t, "SUCCESS", body(t, result.task)["status"])
	require.Equal(t, "rr-1", body(t, result.task)["rewardRequestId"])
	require.Equal(t, "promotion", option(result.opts, asynq.QueueOpt))
	require.Equal(t, 5*time.Second, option(result.opts, asynq.ProcessInOpt))
}

func TestSimulator_GrantMisses(t *testing.T) {
	srv := newPromotion(t, &steps{}, http.StatusOK)
	enq := &fakeEnqueuer{}
	require.NoError(t, newSimulator(enq, 0.05).HandleGrantTask(context.Background(), grantTask(t, processURL(srv))))

	res := body(t, enq.sent[0].task)
	require.Equal(t, "FAILED", res["status"])
	require.Equal(t, ReasonMiss, res["reason"])
	require.Equal(t, "rr-1", res["rewardRequestId"])
}

func TestSimulator_RefusedProcessingFailsGrant(t *testing.T) {
	rec := &steps{}
	srv := newPromotion(t, rec, http.StatusConflict)
	enq := &fakeEnqueuer{steps: rec}

	require.NoError(t, newSimulator(enq, 0.5).HandleGrantTask(context.Background(), grantTask(t, processURL(srv))))

	require.Len(t, enq.sent, 1, "no success is ever scheduled")
	res := body(t, enq.sent[0].task)
	require.Equal(t, "FAILED", res["status"])
	require.Equal(t, ReasonProcessingFailed, res["reason"])
	require.Nil(t, option(enq.sent[0].opts, asynq.ProcessInOpt), "failed immediately")
}

func TestSimulator_UnreachableProcessingFailsGrant(t *testing.T) {
	srv := newPromotion(t, &steps{}, http.StatusOK)
	cb := processURL(srv)
	srv.Close()

	enq := &fakeEnqueuer{}
	require.NoError(t, newSimulator(enq, 0.5).HandleGrantTask(context.Background(), grantTask(t, cb)))

	require.Len(t, enq.sent, 1)
	require.Equal(t, ReasonProcessingFailed, body(t, enq.sent[0].task)["reason"])
}

func TestSimulator_QueuedProcessingCallback(t *testing.T) {
	queued := game.Callback{Cmd: taskname.RewardRequestProcess, Queue: "promotion"}

	enq := &fakeEnqueuer{}
	require.NoError(t, newSimulator(enq, 0.5).HandleGrantTask(context.Background(), grantTask(t, queued)))
	require.Len(t, enq.sent, 2)
	require.Equal(t, taskname.RewardRequestProcess, enq.sent[0].task.Type())
	require.Equal(t, "SUCCESS", body(t, enq.sent[1].task)["status"])

	enq = &fakeEnqueuer{failOn: taskname.RewardRequestProcess}
	require.NoError(t, newSimulator(enq, 0.5).HandleGrantTask(context.Background(), grantTask(t, queued)))
	require.Len(t, enq.sent, 1)
	require.Equal(t, ReasonProcessingFailed, body(t, enq.sent[0].task)["reason"])
}

func TestSimulator_BadPayloadIsNotRetried(t *testing.T) {
	err := newSimulator(&fakeEnqueuer{}, 0.5).HandleGrantTask(context.Background(), asynq.NewTask(taskname.GameRewardProcess, []byte("nope")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandler_Command(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Error())
	NewHandler(newSimulator(&fakeEnqueuer{}, 0)).RegisterRoutes(r.Group("/v1"))

	cases := map[string]float64{"level": 12, "loginDays": 7}
	for field, want := range cases {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/commands/game.user-action.get", strings.NewReader(`{"userId":"u1","field":"`+field+`"}`))
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var out struct{ Value float64 }
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		require.Equal(t, want, out.Value, field)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/commands/x", strings.NewReader(`{}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
