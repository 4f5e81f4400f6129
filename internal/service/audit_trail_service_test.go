package service

import (
	"context"
	"testing"

	"restaurant-advisor-be/pkg/events"

	"github.com/stretchr/testify/assert"
)

type logEntry struct {
	level   string
	module  string
	message string
	details map[string]interface{}
}

// captureLogger records every entry so tests can assert on what was logged.
type captureLogger struct {
	entries []logEntry
}

func (c *captureLogger) Debug(module, message string, details map[string]interface{}) {
	c.entries = append(c.entries, logEntry{"debug", module, message, details})
}

func (c *captureLogger) Info(module, message string, details map[string]interface{}) {
	c.entries = append(c.entries, logEntry{"info", module, message, details})
}

func (c *captureLogger) Warn(module, message string, details map[string]interface{}) {
	c.entries = append(c.entries, logEntry{"warn", module, message, details})
}

func (c *captureLogger) Error(module, message string, details map[string]interface{}) {
	c.entries = append(c.entries, logEntry{"error", module, message, details})
}

func (c *captureLogger) Sync() error { return nil }

func TestAuditTrailRecordsEventWithPayload(t *testing.T) {
	log := &captureLogger{}
	svc := &auditTrailService{log: log}

	event := events.NewAuditEvent(events.TypeQueryHandled, map[string]interface{}{
		"user_id": "u1",
		"outcome": "success",
	})

	err := svc.record(context.Background(), event)
	assert.NoError(t, err)

	if assert.Len(t, log.entries, 1) {
		entry := log.entries[0]
		assert.Equal(t, "info", entry.level)
		assert.Equal(t, "audit_trail", entry.module)
		assert.Contains(t, entry.message, events.TypeQueryHandled)
		assert.Equal(t, "u1", entry.details["user_id"])
	}
}

func TestAuditTrailHandlerNeverRejectsEvents(t *testing.T) {
	// The durable consumer Naks on handler error, which would redeliver the
	// same record forever. The trail must accept whatever arrives.
	log := &captureLogger{}
	svc := &auditTrailService{log: log}

	err := svc.record(context.Background(), events.NewAuditEvent("audit.unknown", nil))
	assert.NoError(t, err)
}
