package service

import (
	"context"
	"fmt"

	"restaurant-advisor-be/internal/pkg/logger"
	"restaurant-advisor-be/pkg/events"
	pktNats "restaurant-advisor-be/pkg/nats"
)

// IAuditTrailService drains the audit stream into a durable structured log,
// so the trail survives even when no other consumer is attached.
type IAuditTrailService interface {
	Start()
}

type auditTrailService struct {
	subscriber *pktNats.Subscriber
	log        logger.ILogger
}

func NewAuditTrailService(sub *pktNats.Subscriber, log logger.ILogger) IAuditTrailService {
	return &auditTrailService{
		subscriber: sub,
		log:        log,
	}
}

// Start begins listening to the audit stream.
func (s *auditTrailService) Start() {
	err := s.subscriber.Subscribe("audit.>", "audit-trail-worker", s.record)
	if err != nil {
		s.log.Error("audit_trail", "failed to start audit subscriber", map[string]interface{}{"error": err.Error()})
		return
	}
	s.log.Info("audit_trail", "audit trail started, listening to audit.>", nil)
}

func (s *auditTrailService) record(ctx context.Context, event events.Event) error {
	s.log.Info("audit_trail", fmt.Sprintf("audit event: %s", event.EventType()), event.Payload())
	return nil
}
