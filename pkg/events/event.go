package events

import "time"

// Event is the contract for audit events published to the bus.
type Event interface {
	// EventType returns the event code (e.g. "query.handled").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic implementation used by publishers and by the
// subscriber when reconstructing events from the wire.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Audit event codes emitted by the advisor.
const (
	TypeQueryHandled     = "query.handled"
	TypeQueryDenied      = "query.denied"
	TypeSessionArchived  = "session.archived"
	TypeUserRegistered   = "user.registered"
	TypeSourcesDegraded  = "retrieval.degraded"
	TypeDocumentIngested = "knowledge.document.ingested"
)

// NewAuditEvent builds a BaseEvent stamped with the current time.
func NewAuditEvent(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
}
