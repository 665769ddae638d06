// Package kafka publishes audit events to a Kafka topic using segmentio/kafka-go.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jlud7/goddard-gui/pkg/events"
)

// Config holds the Kafka connection settings for the audit publisher.
type Config struct {
	Brokers []string
	Topic   string
	Logger  *slog.Logger
}

// Publisher writes audit events to a Kafka topic, keyed by event type so
// events for the same operation kind land on the same partition.
type Publisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka-backed audit publisher.
func NewPublisher(cfg Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka publisher: no topic configured")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: 10 * time.Second,
		// The worker pool already batches by draining a queue; flush each
		// message promptly instead of waiting for kafka-go's batch window.
		BatchTimeout: 100 * time.Millisecond,
	}

	return &Publisher{
		writer: writer,
		logger: logger,
	}, nil
}

// PublishAudit marshals the event to JSON and writes it to the topic.
func (p *Publisher) PublishAudit(ctx context.Context, event *events.AuditEvent) error {
	if event == nil {
		return events.ErrNilAuditEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling audit event %s: %w", event.EventID, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.EventType),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID)},
			{Key: "schema_version", Value: []byte(fmt.Sprintf("%d", event.SchemaVersion))},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing audit event %s: %w", event.EventID, err)
	}

	p.logger.Debug("published audit event",
		"event_id", event.EventID,
		"event_type", event.EventType,
	)

	return nil
}

// Close flushes pending messages and releases the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
