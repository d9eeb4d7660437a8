// Package kafka publishes completed pipeline runs to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/spetersoncode/maildraft/workflow"
)

// DefaultRunsTopic receives one message per completed run.
const DefaultRunsTopic = "maildraft-runs"

// Writer is the subset of *kafka.Writer used by Producer.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer sends run records to Kafka, keyed by user so one user's runs
// stay ordered within a partition.
type Producer struct {
	writer Writer
	logger *slog.Logger
}

// NewProducer creates a producer writing to topic on brokers.
func NewProducer(brokers []string, topic string, logger *slog.Logger) *Producer {
	if topic == "" {
		topic = DefaultRunsTopic
	}
	return NewProducerWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}, logger)
}

// NewProducerWithWriter wraps an existing writer.
func NewProducerWithWriter(w Writer, logger *slog.Logger) *Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Producer{writer: w, logger: logger}
}

// Publish sends r to the runs topic.
func (p *Producer) Publish(ctx context.Context, r workflow.RunRecord) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode run record: %w", err)
	}

	key := r.UserID
	if key == "" {
		key = r.RunID
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(r.Kind)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish run %s: %w", r.RunID, err)
	}

	p.logger.Debug("published run record", "run_id", r.RunID, "kind", r.Kind)
	return nil
}

// Close flushes and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}

var _ workflow.Publisher = (*Producer)(nil)
