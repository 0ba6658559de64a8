// Package events publishes catalog change events to Kafka.
//
// Publishing is best-effort from the caller's point of view: services emit
// events after the database write has committed and log publish failures at
// warn level instead of failing the request. The writer batches messages per
// the kafka configuration.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/libraria/catalog-service/internal/config"
	"github.com/libraria/catalog-service/internal/domain"
)

// Publisher delivers domain events to downstream consumers.
type Publisher interface {
	// PublishBookEvent delivers a book lifecycle event.
	PublishBookEvent(ctx context.Context, event *domain.BookEvent) error

	// Close flushes buffered messages and releases the underlying writer.
	Close() error
}

// Compile-time interface verification.
var (
	_ Publisher = (*KafkaPublisher)(nil)
	_ Publisher = (*NoopPublisher)(nil)
)

// KafkaPublisher writes events to a Kafka topic.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

// NewKafkaPublisher creates a publisher from the kafka configuration.
func NewKafkaPublisher(cfg config.KafkaConfig, logger zerolog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{
		writer: writer,
		logger: logger.With().Str("component", "events").Logger(),
	}
}

// PublishBookEvent delivers a book lifecycle event, keyed by event id.
func (p *KafkaPublisher) PublishBookEvent(ctx context.Context, event *domain.BookEvent) error {
	if event == nil {
		return domain.NewValidationError("event", "event cannot be nil")
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode book event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.EventID),
		Value: value,
		Time:  event.OccurredAt,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish book event %s: %w", event.EventID, err)
	}

	p.logger.Debug().
		Str("event_id", event.EventID).
		Str("event_type", event.EventType).
		Msg("Published book event")

	return nil
}

// Close flushes buffered messages and releases the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher is the publisher used when kafka is disabled. Events are
// discarded.
type NoopPublisher struct{}

// NewNoopPublisher creates a disabled publisher.
func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

// PublishBookEvent discards the event.
func (*NoopPublisher) PublishBookEvent(context.Context, *domain.BookEvent) error {
	return nil
}

// Close does nothing.
func (*NoopPublisher) Close() error {
	return nil
}
