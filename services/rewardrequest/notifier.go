package rewardrequest

import (
	"context"
	"encoding/json"

	"smallbiznis-promotion/pkg/kafka"

	"go.uber.org/zap"
)

// Notifier is told about every applied status change.
type Notifier interface {
	Notify(ctx context.Context, change StatusChange) error
}

type publisherNotifier struct {
	publisher kafka.Publisher
}

// NewNotifier publishes status changes keyed by reward request id, so that
// changes of one request stay ordered within a partition. Without a broker the
// changes are logged.
func NewNotifier(publisher kafka.Publisher, logger *zap.Logger) Notifier {
	if publisher == nil {
		return logNotifier{logger: logger}
	}
	if _, ok := publisher.(kafka.Noop); ok {
		return logNotifier{logger: logger}
	}
	return &publisherNotifier{publisher: publisher}
}

func (n *publisherNotifier) Notify(ctx context.Context, change StatusChange) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return err
	}
	return n.publisher.Publish(ctx, change.RewardRequestID, payload)
}

type logNotifier struct {
	logger *zap.Logger
}

func (n logNotifier) Notify(_ context.Context, change StatusChange) error {
	if n.logger == nil {
		return nil
	}
	n.logger.Info("reward request status changed",
		zap.String("reward_request_id", change.RewardRequestID),
		zap.String("action", string(change.Action)),
		zap.String("status", string(change.Status)),
	)
	return nil
}
