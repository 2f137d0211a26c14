package rewardrequest

import (
	"context"
	"encoding/json"
	"fmt"

	"smallbiznis-promotion/pkg/errutil"
	"smallbiznis-promotion/pkg/taskname"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var TaskModule = fx.Module("task.reward-request",
	fx.Provide(NewTask),
	fx.Invoke(registerTaskHandlers),
)

// ProcessPayload is the payload of an event.reward-request.process callback.
type ProcessPayload struct {
	RewardRequestID string `json:"rewardRequestId"`
}

// ResultPayload is the payload of an event.reward-request.result callback.
type ResultPayload struct {
	RewardRequestID string `json:"rewardRequestId"`
	Status          Status `json:"status"`
	Reason          string `json:"reason,omitempty"`
}

// Task consumes the authority's callbacks.
type Task struct {
	service *Service
}

func NewTask(service *Service) *Task {
	return &Task{service: service}
}

func registerTaskHandlers(mux *asynq.ServeMux, t *Task) {
	mux.HandleFunc(taskname.RewardRequestProcess, t.HandleProcessTask)
	mux.HandleFunc(taskname.RewardRequestResult, t.HandleResultTask)
}

func (t *Task) HandleProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload ProcessPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
	}

	zapLog := zap.L().With(
		zap.String("task_type", task.Type()),
		zap.String("reward_request_id", payload.RewardRequestID),
	)

	_, err := t.service.Process(ctx, payload.RewardRequestID)
	return settle(zapLog, err)
}

func (t *Task) HandleResultTask(ctx context.Context, task *asynq.Task) error {
	var payload ResultPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
	}

	zapLog := zap.L().With(
		zap.String("task_type", task.Type()),
		zap.String("reward_request_id", payload.RewardRequestID),
		zap.String("status", string(payload.Status)),
	)

	_, err := t.service.Result(ctx, payload.RewardRequestID, payload.Status, payload.Reason)
	if errutil.Is(err, errutil.StatusFailedPrecondition) && t.awaitingProcess(ctx, payload.RewardRequestID) {
		// the process callback is still on its way; try again after it
		zapLog.Warn("result arrived before processing, will retry", zap.Error(err))
		return err
	}
	return settle(zapLog, err)
}

func (t *Task) awaitingProcess(ctx context.Context, id string) bool {
	req, err := t.service.Get(ctx, id)
	return err == nil && req.Status == StatusApproved
}

// settle turns a service error into the task outcome. Errors that a retry
// cannot fix are not retried.
func settle(zapLog *zap.Logger, err error) error {
	if err == nil {
		zapLog.Info("callback applied")
		return nil
	}

	switch errutil.CodeOf(err) {
	case errutil.StatusNotFound, errutil.StatusFailedPrecondition, errutil.StatusValidationFailed:
		zapLog.Warn("callback rejected", zap.Error(err))
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	default:
		zapLog.Error("callback failed, will retry", zap.Error(err))
		return err
	}
}
