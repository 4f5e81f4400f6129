package service

import (
	"context"
	"encoding/json"
	"log"

	advisormemory "restaurant-advisor-be/pkg/advisor/memory"
	"restaurant-advisor-be/pkg/events"
	pktNats "restaurant-advisor-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IArchiveConsumerService drains session-archive events from the in-process
// bus and forwards them to the durable audit trail.
type IArchiveConsumerService interface {
	Consume(ctx context.Context) error
}

type archiveConsumerService struct {
	pubSub   *gochannel.GoChannel
	auditPub *pktNats.Publisher
}

func NewArchiveConsumerService(pubSub *gochannel.GoChannel, auditPub *pktNats.Publisher) IArchiveConsumerService {
	return &archiveConsumerService{
		pubSub:   pubSub,
		auditPub: auditPub,
	}
}

func (cs *archiveConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, advisormemory.SessionArchivedTopic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *archiveConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload advisormemory.SessionArchivedEvent
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal archive event: %v", err)
		msg.Ack() // invalid messages would retry forever
		return
	}

	log.Printf("[INFO] Session %s archived for user %s (%d turns)", payload.SessionId, payload.UserId, payload.Turns)

	if cs.auditPub != nil {
		event := events.NewAuditEvent(events.TypeSessionArchived, map[string]interface{}{
			"session_id":  payload.SessionId.String(),
			"user_id":     payload.UserId.String(),
			"turns":       payload.Turns,
			"archived_at": payload.ArchivedAt,
		})
		if err := cs.auditPub.Publish(ctx, event); err != nil {
			log.Printf("[WARN] Failed to forward archive event to audit trail: %v", err)
		}
	}

	msg.Ack()
}
