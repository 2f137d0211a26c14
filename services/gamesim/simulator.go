package gamesim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"math/rand/v2"
	"net/http"
	"time"

	"smallbiznis-promotion/pkg/config"
	"smallbiznis-promotion/pkg/task"
	"smallbiznis-promotion/services/game"

	"github.com/gojek/heimdall/v7/httpclient"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	ReasonProcessingFailed = "Processing validation failed"
	ReasonMiss             = "Miss"
)

// Simulator stands in for the game authority: it answers user-field queries
// from configuration and plays grants back through the callbacks they carry.
type Simulator struct {
	enqueuer     task.Enqueuer
	http         game.Doer
	defaultValue float64
	fields       map[string]float64
	resultDelay  time.Duration
	failureRate  float64
	roll         func() float64
	logger       *zap.Logger
}

func NewSimulator(cfg *config.Config, enqueuer task.Enqueuer, logger *zap.Logger) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{
		enqueuer:     enqueuer,
		http:         httpclient.NewClient(httpclient.WithHTTPTimeout(cfg.Simulator.CallbackTimeout)),
		defaultValue: cfg.Simulator.DefaultValue,
		fields:       cfg.Simulator.Fields,
		resultDelay:  cfg.Simulator.ResultDelay,
		failureRate:  cfg.Simulator.FailureRate,
		roll:         rand.Float64,
		logger:       logger,
	}
}

// Value is the simulated value of field for every user.
func (s *Simulator) Value(field string) float64 {
	if v, ok := s.fields[field]; ok {
		return v
	}
	return s.defaultValue
}

// HandleGrantTask marks the grant as processing and, once that is accepted,
// schedules its result. A grant whose processing step is refused or cannot be
// delivered is failed right away.
func (s *Simulator) HandleGrantTask(ctx context.Context, t *asynq.Task) error {
	var payload game.GrantPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
	}

	zapLog := s.logger.With(
		zap.String("task_type", t.Type()),
		zap.String("user_id", payload.UserID),
		zap.String("reward_id", payload.RewardID),
	)

	if err := s.markProcessing(ctx, payload.Processing); err != nil {
		zapLog.Warn("processing refused, failing grant", zap.Error(err))
		return s.send(ctx, payload.Callback, map[string]any{
			"status": "FAILED",
			"reason": ReasonProcessingFailed,
		})
	}

	result := map[string]any{"status": "SUCCESS"}
	if s.roll() < s.failureRate {
		result = map[string]any{"status": "FAILED", "reason": ReasonMiss}
	}
	zapLog.Info("grant processing", zap.Any("result", result), zap.Duration("delay", s.resultDelay))

	return s.send(ctx, payload.Callback, result, asynq.ProcessIn(s.resultDelay))
}

// markProcessing delivers the processing callback. A URL callback is a POST
// whose non-2xx reply means the grant was refused; a task callback is only
// enqueued.
func (s *Simulator) markProcessing(ctx context.Context, cb game.Callback) error {
	if cb.URL == "" {
		return s.send(ctx, cb, nil)
	}

	b, err := json.Marshal(cb.Payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cb.URL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("processing callback: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}

func (s *Simulator) send(ctx context.Context, cb game.Callback, extra map[string]any, opts ...asynq.Option) error {
	body := maps.Clone(cb.Payload)
	if body == nil {
		body = map[string]any{}
	}
	maps.Copy(body, extra)

	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	if cb.Queue != "" {
		opts = append(opts, asynq.Queue(cb.Queue))
	}
	_, err = s.enqueuer.Enqueue(ctx, asynq.NewTask(cb.Cmd, b), opts...)
	return err
}
