package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Producer publishes CloudEvents to Kafka topics.
type Producer struct {
	writer *kafkago.Writer
	logger *zap.Logger
}

// NewProducer creates a Producer for the given brokers. Topics are created
// on first publish when the broker allows it.
func NewProducer(brokers []string, log *zap.Logger) *Producer {
	writer := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return &Producer{writer: writer, logger: log}
}

// PublishEvent publishes a CloudEvent to the topic, keyed so that events
// for the same aggregate stay ordered within a partition.
func (p *Producer) PublishEvent(ctx context.Context, topic string, event *CloudEvent) error {
	return p.Publish(ctx, topic, event.ID, event)
}

// Publish marshals value and writes it to the topic with the given key.
func (p *Producer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	msg := kafkago.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to %s: %w", topic, err)
	}

	p.logger.Debug("published event",
		zap.String("topic", topic),
		zap.String("key", key),
	)
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
