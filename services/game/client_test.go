package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"smallbiznis-promotion/pkg/task"
	"smallbiznis-promotion/pkg/taskname"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
	opts  [][]asynq.Option
	err   error
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, t *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, t)
	f.opts = append(f.opts, opts)
	return &asynq.TaskInfo{ID: "id", Queue: "game"}, nil
}

func optionValue(opts []asynq.Option, typ asynq.OptionType) any {
	for _, o := range opts {
		if o.Type() == typ {
			return o.Value()
		}
	}
	return nil
}

func newTestClient(baseURL string, enq task.Enqueuer, insp task.Inspector) *Client {
	return NewClient(Options{
		BaseURL:       baseURL,
		Timeout:       time.Second,
		Queue:         "game",
		GrantMaxRetry: 3,
	}, enq, insp, zap.NewNop())
}

func correlated(id string) (Callback, Callback) {
	payload := map[string]any{"rewardRequestId": id}
	return Callback{URL: "http://promotion/v1/reward-requests/" + id + "/process", Payload: payload},
		Callback{Cmd: taskname.RewardRequestResult, Queue: "promotion", Payload: payload}
}

func TestClient_QueryUserField(t *testing.T) {
	var (
		got          queryRequest
		method, path string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		fmt.Fprint(w, `{"value": 10}`)
	}))
	defer srv.Close()

	v, err := newTestClient(srv.URL+"/", &fakeEnqueuer{}, nil).QueryUserField(context.Background(), "game.user-action.get", "u1", "loginDays")
	require.NoError(t, err)
	require.Equal(t, 10.0, v)
	require.Equal(t, http.MethodPost, method)
	require.Equal(t, "/v1/commands/game.user-action.get", path)
	require.Equal(t, queryRequest{UserID: "u1", Field: "loginDays"}, got)
}

func TestClient_QueryUserFieldErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/commands/bad-status":
			http.Error(w, "boom", http.StatusInternalServerError)
		case "/v1/commands/not-found":
			http.Error(w, "unknown command", http.StatusNotFound)
		case "/v1/commands/no-value":
			fmt.Fprint(w, `{}`)
		case "/v1/commands/slow":
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}
	}))
	defer srv.Close()
	c := newTestClient(srv.URL, &fakeEnqueuer{}, nil)

	for _, cmd := range []string{"bad-status", "not-found", "no-value"} {
		_, err := c.QueryUserField(context.Background(), cmd, "u1", "x")
		require.Error(t, err, cmd)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.QueryUserField(ctx, "slow", "u1", "x")
	require.Error(t, err)

	srv.Close()
	_, err = c.QueryUserField(context.Background(), "bad-status", "u1", "x")
	require.Error(t, err)
}

func TestClient_GrantReward(t *testing.T) {
	enq := &fakeEnqueuer{}
	c := newTestClient("http://game", enq, nil)
	processing, result := correlated("rr-1")

	err := c.GrantReward(context.Background(), GrantRequest{
		RequestID:  "rr-1",
		UserID:     "u1",
		EventID:    "ev-1",
		RewardID:   "rw-1",
		Type:       "coin",
		Name:       "gold",
		Qty:        2,
		Processing: processing,
		Result:     result,
	})
	require.NoError(t, err)
	require.Len(t, enq.tasks, 1)

	task := enq.tasks[0]
	require.Equal(t, taskname.GameRewardProcess, task.Type())
	require.Equal(t, "grant:rr-1", optionValue(enq.opts[0], asynq.TaskIDOpt))
	require.Equal(t, "game", optionValue(enq.opts[0], asynq.QueueOpt))
	require.Equal(t, 3, optionValue(enq.opts[0], asynq.MaxRetryOpt))

	var payload GrantPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.Equal(t, "u1", payload.UserID)
	require.Equal(t, 2, payload.Qty)
	require.Equal(t, processing.URL, payload.Processing.URL)
	require.Equal(t, taskname.RewardRequestResult, payload.Callback.Cmd)
	require.Equal(t, "promotion", payload.Callback.Queue)
	require.Equal(t, "rr-1", payload.Processing.Payload["rewardRequestId"])
	require.Equal(t, "rr-1", payload.Callback.Payload["rewardRequestId"])
}

func TestClient_GrantRewardCustomCommandAndConflicts(t *testing.T) {
	enq := &fakeEnqueuer{}
	c := newTestClient("http://game", enq, nil)

	require.NoError(t, c.GrantReward(context.Background(), GrantRequest{RequestID: "rr-2", Command: "game.item.grant"}))
	require.Equal(t, "game.item.grant", enq.tasks[0].Type())

	enq.err = fmt.Errorf("failed to enqueue task: %w", asynq.ErrTaskIDConflict)
	require.NoError(t, c.GrantReward(context.Background(), GrantRequest{RequestID: "rr-2"}))

	enq.err = fmt.Errorf("failed to enqueue task: %w", context.DeadlineExceeded)
	require.Error(t, c.GrantReward(context.Background(), GrantRequest{RequestID: "rr-3"}))
}

type brokenInspector struct{}

func (brokenInspector) GetTaskInfo(string, string) (*asynq.TaskInfo, error) {
	return nil, errors.New("redis: connection refused")
}

func (brokenInspector) DeleteTask(string, string) error { return nil }

func TestClient_GrantRewardConflictLookupFails(t *testing.T) {
	enq := &fakeEnqueuer{err: fmt.Errorf("failed to enqueue task: %w", asynq.ErrTaskIDConflict)}
	c := newTestClient("http://game", enq, brokenInspector{})

	err := c.GrantReward(context.Background(), GrantRequest{RequestID: "rr-1"})
	require.Error(t, err, "a grant that cannot be inspected is not reported as queued")
}

func TestClient_GrantRewardReplacesArchivedGrant(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	insp := asynq.NewInspectorFromRedisClient(rdb)
	c := newTestClient("http://game", task.NewEnqueuer(asynq.NewClientFromRedisClient(rdb)), insp)
	ctx := context.Background()
	processing, result := correlated("rr-1")
	req := GrantRequest{RequestID: "rr-1", UserID: "u1", Processing: processing, Result: result}

	require.NoError(t, c.GrantReward(ctx, req))

	// still pending: a second dispatch does not queue a duplicate
	require.NoError(t, c.GrantReward(ctx, req))
	pending, err := insp.ListPendingTasks("game")
	require.NoError(t, err)
	require.Len(t, pending, 1)

	// the authority gave up on the grant
	require.NoError(t, insp.ArchiveTask("game", GrantTaskID("rr-1")))

	require.NoError(t, c.GrantReward(ctx, req))
	pending, err = insp.ListPendingTasks("game")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, GrantTaskID("rr-1"), pending[0].ID)

	archived, err := insp.ListArchivedTasks("game")
	require.NoError(t, err)
	require.Empty(t, archived)
}
