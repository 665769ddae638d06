package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeToolInvoked is emitted after a Gateway tool call completes.
	EventTypeToolInvoked = "goddard.tool.invoked"

	// EventTypeChatCompleted is emitted after a chat stream finishes.
	EventTypeChatCompleted = "goddard.chat.completed"
)

// AuditEvent is a transport-neutral record of one Gateway operation made
// through the panel, emitted off the HTTP hot path.
type AuditEvent struct {
	SchemaVersion int         `json:"schema_version"`
	EventType     string      `json:"event_type"`
	EventID       string      `json:"event_id"`
	EmittedAt     time.Time   `json:"emitted_at"`
	Source        EventSource `json:"source"`
	Op            OpMeta      `json:"op"`
}

// EventSource identifies where the operation originated.
type EventSource struct {
	Panel      string `json:"panel,omitempty"`
	RemoteAddr string `json:"remote_addr,omitempty"`
	Gateway    string `json:"gateway"`
}

// OpMeta captures lifecycle metadata for the audited operation.
type OpMeta struct {
	Tool        string          `json:"tool,omitempty"`
	Args        json.RawMessage `json:"args,omitempty"`
	Model       string          `json:"model,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt time.Time       `json:"completed_at"`
	DurationMs  int64           `json:"duration_ms"`
	Streaming   bool            `json:"streaming"`
	Status      string          `json:"status"`
	Error       string          `json:"error,omitempty"`
}

// NewAuditEvent stamps a fresh event with schema version, a unique ID and
// the emission time.
func NewAuditEvent(eventType string, source EventSource, op OpMeta) *AuditEvent {
	op.DurationMs = op.CompletedAt.Sub(op.StartedAt).Milliseconds()

	return &AuditEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     eventType,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source:        source,
		Op:            op,
	}
}
