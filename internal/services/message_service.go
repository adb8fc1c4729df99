package services

import (
	"context"
	"errors"

	"relay-chat/internal/domain/conversation"
	"relay-chat/internal/domain/message"
	"relay-chat/internal/events"
	"relay-chat/internal/proxy"
	"relay-chat/internal/repository"
	apperrors "relay-chat/pkg/errors"

	"github.com/google/uuid"
)

var ErrEmptyMessage = apperrors.InvalidInput("Message content is required")

type MessageService struct {
	store repository.Store
}

func NewMessageService(store repository.Store) *MessageService {
	return &MessageService{store: store}
}

// SendDirect appends a message to the direct conversation between sender and
// recipient, creating the conversation on first contact. The conversation,
// the message, the latest-message pointer and the outbox event are written in
// one transaction.
func (s *MessageService) SendDirect(ctx context.Context, senderID, recipientID uuid.UUID, content string) (message.Message, error) {
	if content == "" {
		return message.Message{}, ErrEmptyMessage
	}

	var msgID uuid.UUID
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Users().GetUserByID(ctx, recipientID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		conv, err := findOrCreateDirect(ctx, tx, senderID, recipientID)
		if err != nil {
			return err
		}

		id, err := appendMessage(ctx, tx, conv, senderID, content)
		msgID = id
		return err
	})
	if err != nil {
		return message.Message{}, err
	}
	return s.store.Messages().GetByID(ctx, msgID)
}

// ListDirect returns the history between caller and counterpart, oldest
// first. No conversation yet means no messages.
func (s *MessageService) ListDirect(ctx context.Context, callerID, counterpartID uuid.UUID) ([]message.Message, error) {
	conv, err := s.store.Conversations().GetDirectConversation(ctx, callerID, counterpartID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return []message.Message{}, nil
		}
		return nil, err
	}
	return s.store.Messages().ListByConversation(ctx, conv.ID)
}

// SendGroup appends a message to a group the sender belongs to.
func (s *MessageService) SendGroup(ctx context.Context, senderID, groupID uuid.UUID, content string) (message.Message, error) {
	if content == "" {
		return message.Message{}, ErrEmptyMessage
	}

	var msgID uuid.UUID
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		group, err := proxy.NewAccessControl(tx.Conversations()).CanAccessGroup(ctx, senderID, groupID)
		if err != nil {
			return err
		}
		id, err := appendMessage(ctx, tx, group, senderID, content)
		msgID = id
		return err
	})
	if err != nil {
		return message.Message{}, err
	}
	return s.store.Messages().GetByID(ctx, msgID)
}

// ListGroup returns the group history for a current member, oldest first.
func (s *MessageService) ListGroup(ctx context.Context, callerID, groupID uuid.UUID) ([]message.Message, error) {
	group, err := proxy.NewAccessControl(s.store.Conversations()).CanAccessGroup(ctx, callerID, groupID)
	if err != nil {
		return nil, err
	}
	return s.store.Messages().ListByConversation(ctx, group.ID)
}

func appendMessage(ctx context.Context, tx repository.Store, conv conversation.Conversation, senderID uuid.UUID, content string) (uuid.UUID, error) {
	msg := &message.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		SenderID:       senderID,
		Content:        content,
	}
	if err := tx.Messages().Create(ctx, msg); err != nil {
		return uuid.Nil, err
	}
	if err := tx.Conversations().SetLatestMessage(ctx, conv.ID, msg.ID, msg.CreatedAt); err != nil {
		return uuid.Nil, err
	}
	if err := recordEvent(ctx, tx, events.EventTypeMessageCreated, conv.ID, events.MessageCreated{
		MessageID:      msg.ID,
		ConversationID: conv.ID,
		SenderID:       senderID,
		Content:        content,
		IsGroupChat:    conv.IsGroupChat,
		CreatedAt:      msg.CreatedAt,
	}); err != nil {
		return uuid.Nil, err
	}
	return msg.ID, nil
}
