package kafka

import (
	"context"
	"fmt"
	"strings"
	"time"

	"smallbiznis-promotion/pkg/config"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("kafka",
	fx.Provide(NewPublisher),
)

// Publisher writes keyed messages to the configured topic.
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// NewPublisher returns a kafka Producer when KAFKA.ADDR is set and a Noop
// publisher otherwise.
func NewPublisher(lc fx.Lifecycle, cfg *config.Config) (Publisher, error) {
	if strings.TrimSpace(cfg.Kafka.Addrs) == "" {
		zap.L().Info("[Kafka] KAFKA.ADDR not set, status notifications are logged only")
		return Noop{}, nil
	}

	p, err := NewProducer(cfg.Kafka.Addrs, cfg.Kafka.Topic, cfg.Kafka.MessageTimeout)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go p.Run()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Close()
			return nil
		},
	})
	return p, nil
}

type Producer struct {
	producer *kafka.Producer
	topic    string
	done     chan struct{}
}

// NewProducer creates a producer for topic. A message that cannot be
// delivered within messageTimeout is dropped and logged by Run.
func NewProducer(addrs, topic string, messageTimeout time.Duration) (*Producer, error) {
	if topic == "" {
		return nil, fmt.Errorf("kafka: topic is required")
	}

	cm := &kafka.ConfigMap{
		"bootstrap.servers":  addrs,
		"acks":               "all",
		"enable.idempotence": true,
	}
	if messageTimeout > 0 {
		if err := cm.SetKey("message.timeout.ms", int(messageTimeout.Milliseconds())); err != nil {
			return nil, fmt.Errorf("kafka: %w", err)
		}
	}

	p, err := kafka.NewProducer(cm)
	if err != nil {
		return nil, fmt.Errorf("kafka: create producer: %w", err)
	}

	zap.L().Info("[Kafka] Producer created", zap.String("brokers", addrs), zap.String("topic", topic))
	return &Producer{producer: p, topic: topic, done: make(chan struct{})}, nil
}

// Publish hands the message to the producer queue and returns without waiting
// for the broker. Delivery reports are consumed by Run.
func (p *Producer) Publish(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
		Key:            []byte(key),
		Value:          value,
	}, nil)
	if err != nil {
		return fmt.Errorf("kafka: produce: %w", err)
	}
	return nil
}

// Run drains delivery reports until the producer is closed.
func (p *Producer) Run() {
	defer close(p.done)

	for ev := range p.producer.Events() {
		switch e := ev.(type) {
		case *kafka.Message:
			if e.TopicPartition.Error != nil {
				zap.L().Warn("[Kafka] delivery failed",
					zap.String("key", string(e.Key)),
					zap.Error(e.TopicPartition.Error),
				)
			}
		case kafka.Error:
			zap.L().Warn("[Kafka] producer error", zap.Error(e))
		}
	}
}

// Close flushes queued messages for up to five seconds and releases the
// producer. Run returns once Close is done.
func (p *Producer) Close() {
	p.producer.Flush(5000)
	p.producer.Close()
}

// Done is closed when Run has returned.
func (p *Producer) Done() <-chan struct{} {
	return p.done
}

// Noop drops every message.
type Noop struct{}

func (Noop) Publish(context.Context, string, []byte) error { return nil }
