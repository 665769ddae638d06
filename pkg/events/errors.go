package events

import "errors"

// ErrNilAuditEvent indicates a nil audit event payload was provided to a publisher.
var ErrNilAuditEvent = errors.New("nil audit event")
