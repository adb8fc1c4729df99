package services

import (
	"context"
	"encoding/json"

	"relay-chat/internal/domain/outbox"
	"relay-chat/internal/events"
	"relay-chat/internal/repository"

	"github.com/google/uuid"
)

// recordEvent writes a conversation event to the outbox of the given store,
// normally one bound to the transaction making the change.
func recordEvent(ctx context.Context, store repository.Store, eventType string, conversationID uuid.UUID, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return store.Outbox().Create(ctx, &outbox.OutboxEvent{
		EventType:     eventType,
		AggregateType: events.AggregateConversation,
		AggregateID:   conversationID.String(),
		Payload:       data,
	})
}
