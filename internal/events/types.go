package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types follow the format domain.action

// Message events
const (
	EventTypeMessageCreated = "message.created"
)

// Conversation events
const (
	EventTypeConversationCreated = "conversation.created"
	EventTypeConversationUpdated = "conversation.updated"
)

// Participant events
const (
	EventTypeParticipantAdded   = "participant.added"
	EventTypeParticipantRemoved = "participant.removed"
)

// Aggregate types
const (
	AggregateConversation = "conversation"
)

type MessageCreated struct {
	MessageID      uuid.UUID `json:"message_id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	SenderID       uuid.UUID `json:"sender_id"`
	Content        string    `json:"content"`
	IsGroupChat    bool      `json:"is_group_chat"`
	CreatedAt      time.Time `json:"created_at"`
}

type ConversationCreated struct {
	ConversationID uuid.UUID   `json:"conversation_id"`
	IsGroupChat    bool        `json:"is_group_chat"`
	ChatName       string      `json:"chat_name,omitempty"`
	GroupAdminID   *uuid.UUID  `json:"group_admin_id,omitempty"`
	ParticipantIDs []uuid.UUID `json:"participant_ids"`
}

type ConversationUpdated struct {
	ConversationID uuid.UUID `json:"conversation_id"`
	ChatName       string    `json:"chat_name"`
	UpdatedBy      uuid.UUID `json:"updated_by"`
}

type ParticipantChanged struct {
	ConversationID uuid.UUID `json:"conversation_id"`
	UserID         uuid.UUID `json:"user_id"`
	ChangedBy      uuid.UUID `json:"changed_by"`
}
