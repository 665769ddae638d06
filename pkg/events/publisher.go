package events

import "context"

// Publisher publishes audit events to an event stream backend.
type Publisher interface {
	PublishAudit(ctx context.Context, event *AuditEvent) error
	Close() error
}
