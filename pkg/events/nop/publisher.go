package nop

import (
	"context"

	"github.com/jlud7/goddard-gui/pkg/events"
)

// Publisher is a no-op audit publisher used for tests and disabled mode.
type Publisher struct{}

// NewPublisher creates a new no-op audit publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishAudit validates input and otherwise does nothing.
func (p *Publisher) PublishAudit(_ context.Context, event *events.AuditEvent) error {
	if event == nil {
		return events.ErrNilAuditEvent
	}

	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
