package game

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"smallbiznis-promotion/pkg/task"
	"smallbiznis-promotion/pkg/taskname"

	"github.com/gojek/heimdall/v7"
	"github.com/gojek/heimdall/v7/httpclient"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

//go:generate mockgen -destination=mock/game_mock.go -package=mock smallbiznis-promotion/services/game Granter

// Granter asks the authority to grant a reward.
type Granter interface {
	GrantReward(ctx context.Context, req GrantRequest) error
}

// GrantRequest is one grant, correlated by RequestID. Processing and Result
// are handed to the authority unchanged.
type GrantRequest struct {
	RequestID string
	UserID    string
	EventID   string
	RewardID  string
	Type      string
	Name      string
	Qty       int
	// Command is the task type the authority consumes.
	Command    string
	Processing Callback
	Result     Callback
}

// Doer is satisfied by heimdall clients and *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	baseURL       string
	http          Doer
	enqueuer      task.Enqueuer
	inspector     task.Inspector
	queue         string
	grantMaxRetry int
	logger        *zap.Logger
}

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	Queue      string
	// GrantMaxRetry bounds the authority's retries of one grant task.
	GrantMaxRetry int
}

// NewClient builds the client. inspector may be nil, in which case a grant
// whose task id is still known to asynq is never enqueued again.
func NewClient(opts Options, enqueuer task.Enqueuer, inspector task.Inspector, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	backoff := heimdall.NewConstantBackoff(50*time.Millisecond, 100*time.Millisecond)
	doer := httpclient.NewClient(
		httpclient.WithHTTPTimeout(opts.Timeout),
		httpclient.WithRetryCount(opts.RetryCount),
		httpclient.WithRetrier(heimdall.NewRetrier(backoff)),
	)
	return newClient(opts, doer, enqueuer, inspector, logger)
}

func newClient(opts Options, doer Doer, enqueuer task.Enqueuer, inspector task.Inspector, logger *zap.Logger) *Client {
	queue := opts.Queue
	if queue == "" {
		queue = "default"
	}
	return &Client{
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		http:          doer,
		enqueuer:      enqueuer,
		inspector:     inspector,
		queue:         queue,
		grantMaxRetry: opts.GrantMaxRetry,
		logger:        logger,
	}
}

// QueryUserField asks the authority for the user's current value of field.
// Any non-2xx answer or a body without a numeric value is an error.
func (c *Client) QueryUserField(ctx context.Context, command, userID, field string) (float64, error) {
	body, err := json.Marshal(queryRequest{UserID: userID, Field: field})
	if err != nil {
		return 0, err
	}

	endpoint := fmt.Sprintf("%s/v1/commands/%s", c.baseURL, url.PathEscape(command))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return 0, fmt.Errorf("game: %s: %w", command, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("game: %s: unexpected status %d: %s", command, resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("game: %s: decode response: %w", command, err)
	}
	if out.Value == nil {
		return 0, fmt.Errorf("game: %s: response has no value for %q", command, field)
	}
	return *out.Value, nil
}

// GrantReward enqueues the grant on the authority's queue. The task id is
// derived from RequestID: a grant that is still queued is not enqueued twice,
// while one that asynq archived after its last retry is replaced.
func (c *Client) GrantReward(ctx context.Context, req GrantRequest) error {
	command := req.Command
	if command == "" {
		command = taskname.GameRewardProcess
	}

	payload, err := json.Marshal(GrantPayload{
		UserID:     req.UserID,
		EventID:    req.EventID,
		RewardID:   req.RewardID,
		Type:       req.Type,
		Name:       req.Name,
		Qty:        req.Qty,
		Processing: req.Processing,
		Callback:   req.Result,
	})
	if err != nil {
		return err
	}

	taskID := GrantTaskID(req.RequestID)
	zapLog := c.logger.With(
		zap.String("reward_request_id", req.RequestID),
		zap.String("task_id", taskID),
	)
	t := asynq.NewTask(command, payload)
	opts := []asynq.Option{
		asynq.TaskID(taskID),
		asynq.Queue(c.queue),
		asynq.MaxRetry(c.grantMaxRetry),
	}

	info, err := c.enqueuer.Enqueue(ctx, t, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		replace, lookupErr := c.releaseGrant(taskID)
		if lookupErr != nil {
			return lookupErr
		}
		if !replace {
			zapLog.Info("grant already queued")
			return nil
		}
		info, err = c.enqueuer.Enqueue(ctx, t, opts...)
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			zapLog.Info("grant re-queued concurrently")
			return nil
		}
	}
	if err != nil {
		return err
	}

	zapLog.Info("grant enqueued",
		zap.String("queue", info.Queue),
		zap.String("command", command),
	)
	return nil
}

// releaseGrant looks at the task that holds taskID and reports whether the
// grant should be enqueued again. An archived task is deleted first.
func (c *Client) releaseGrant(taskID string) (bool, error) {
	if c.inspector == nil {
		return false, nil
	}

	info, err := c.inspector.GetTaskInfo(c.queue, taskID)
	if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("game: inspect grant %s: %w", taskID, err)
	}

	if info.State != asynq.TaskStateArchived {
		return false, nil
	}

	c.logger.Info("replacing archived grant",
		zap.String("task_id", taskID),
		zap.String("last_err", info.LastErr),
		zap.Int("retried", info.Retried),
	)
	if err := c.inspector.DeleteTask(c.queue, taskID); err != nil && !errors.Is(err, asynq.ErrTaskNotFound) {
		return false, fmt.Errorf("game: delete archived grant %s: %w", taskID, err)
	}
	return true, nil
}

func GrantTaskID(requestID string) string {
	return "grant:" + requestID
}
