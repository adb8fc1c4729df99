package services

import (
	"context"
	"errors"
	"time"

	"relay-chat/internal/domain/conversation"
	"relay-chat/internal/events"
	"relay-chat/internal/proxy"
	"relay-chat/internal/repository"
	apperrors "relay-chat/pkg/errors"

	"github.com/google/uuid"
)

var (
	ErrGroupFieldsMissing  = apperrors.InvalidInput("Please provide group name and users")
	ErrGroupTooSmall       = apperrors.InvalidInput("A group chat must have at least 3 members")
	ErrRenameFieldsMissing = apperrors.InvalidInput("Please provide group ID and new name")
	ErrMemberFieldsMissing = apperrors.InvalidInput("Please provide group ID and user ID")
)

const (
	deniedAdd    = "Only the group admin can add members"
	deniedRemove = "Only the group admin can remove members"
)

const minGroupMembers = 3

type ConversationService struct {
	store repository.Store
}

func NewConversationService(store repository.Store) *ConversationService {
	return &ConversationService{store: store}
}

// FindOrCreateDirect returns the direct conversation of the unordered pair
// {a, b}, creating it when it does not exist yet.
func (s *ConversationService) FindOrCreateDirect(ctx context.Context, a, b uuid.UUID) (conversation.Conversation, error) {
	return findOrCreateDirect(ctx, s.store, a, b)
}

// findOrCreateDirect relies on the unique direct_key index: when a concurrent
// caller wins the insert, the savepoint is rolled back and the winner read.
func findOrCreateDirect(ctx context.Context, store repository.Store, a, b uuid.UUID) (conversation.Conversation, error) {
	existing, err := store.Conversations().GetDirectConversation(ctx, a, b)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return conversation.Conversation{}, err
	}

	key := conversation.DirectKey(a, b)
	c := &conversation.Conversation{
		ID:          uuid.New(),
		IsGroupChat: false,
		DirectKey:   &key,
	}
	members := uniqueIDs([]uuid.UUID{a, b})

	err = store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Conversations().Create(ctx, c); err != nil {
			return err
		}
		if err := tx.Conversations().AddParticipants(ctx, c.ID, members...); err != nil {
			return err
		}
		return recordEvent(ctx, tx, events.EventTypeConversationCreated, c.ID, events.ConversationCreated{
			ConversationID: c.ID,
			ParticipantIDs: members,
		})
	})
	if errors.Is(err, apperrors.ErrAlreadyExists) {
		return store.Conversations().GetDirectConversation(ctx, a, b)
	}
	if err != nil {
		return conversation.Conversation{}, err
	}
	return store.Conversations().GetByID(ctx, c.ID)
}

// CreateGroup creates a group administered by requesterID. The requester is
// always a member; duplicate ids are collapsed before the size check. A nil
// userIDs means the list was not supplied; an empty one fails the size check.
func (s *ConversationService) CreateGroup(ctx context.Context, requesterID uuid.UUID, chatName string, userIDs []uuid.UUID) (conversation.Conversation, error) {
	if chatName == "" || userIDs == nil {
		return conversation.Conversation{}, ErrGroupFieldsMissing
	}

	members := uniqueIDs(append(append([]uuid.UUID{}, userIDs...), requesterID))
	if len(members) < minGroupMembers {
		return conversation.Conversation{}, ErrGroupTooSmall
	}

	var groupID uuid.UUID
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		found, err := tx.Users().CountExisting(ctx, members)
		if err != nil {
			return err
		}
		if int(found) != len(members) {
			return ErrUserNotFound
		}

		admin := requesterID
		group := &conversation.Conversation{
			ID:           uuid.New(),
			IsGroupChat:  true,
			ChatName:     chatName,
			GroupAdminID: &admin,
		}
		if err := tx.Conversations().Create(ctx, group); err != nil {
			return err
		}
		if err := tx.Conversations().AddParticipants(ctx, group.ID, members...); err != nil {
			return err
		}
		groupID = group.ID
		return recordEvent(ctx, tx, events.EventTypeConversationCreated, group.ID, events.ConversationCreated{
			ConversationID: group.ID,
			IsGroupChat:    true,
			ChatName:       chatName,
			GroupAdminID:   &admin,
			ParticipantIDs: members,
		})
	})
	if err != nil {
		return conversation.Conversation{}, err
	}
	return s.store.Conversations().GetByID(ctx, groupID)
}

// RenameGroup changes the display name of a group. Any authenticated caller
// may rename.
func (s *ConversationService) RenameGroup(ctx context.Context, requesterID, groupID uuid.UUID, chatName string) (conversation.Conversation, error) {
	if groupID == uuid.Nil || chatName == "" {
		return conversation.Conversation{}, ErrRenameFieldsMissing
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Conversations().Rename(ctx, groupID, chatName); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return proxy.ErrGroupNotFound
			}
			return err
		}
		return recordEvent(ctx, tx, events.EventTypeConversationUpdated, groupID, events.ConversationUpdated{
			ConversationID: groupID,
			ChatName:       chatName,
			UpdatedBy:      requesterID,
		})
	})
	if err != nil {
		return conversation.Conversation{}, err
	}
	return s.store.Conversations().GetByID(ctx, groupID)
}

// AddMember adds userID to the group. Adding a current member changes nothing
// but the update time.
func (s *ConversationService) AddMember(ctx context.Context, requesterID, groupID, userID uuid.UUID) (conversation.Conversation, error) {
	if groupID == uuid.Nil || userID == uuid.Nil {
		return conversation.Conversation{}, ErrMemberFieldsMissing
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		access := proxy.NewAccessControl(tx.Conversations())
		group, err := access.LoadGroup(ctx, groupID)
		if err != nil {
			return err
		}
		if err := access.EnsureGroupAdmin(group, requesterID, deniedAdd); err != nil {
			return err
		}
		if _, err := tx.Users().GetUserByID(ctx, userID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if err := tx.Conversations().AddParticipants(ctx, groupID, userID); err != nil {
			return err
		}
		if err := tx.Conversations().Touch(ctx, groupID, time.Now()); err != nil {
			return err
		}
		return recordEvent(ctx, tx, events.EventTypeParticipantAdded, groupID, events.ParticipantChanged{
			ConversationID: groupID,
			UserID:         userID,
			ChangedBy:      requesterID,
		})
	})
	if err != nil {
		return conversation.Conversation{}, err
	}
	return s.store.Conversations().GetByID(ctx, groupID)
}

// RemoveMember drops userID from the group. Removing a non-member is not an
// error.
func (s *ConversationService) RemoveMember(ctx context.Context, requesterID, groupID, userID uuid.UUID) (conversation.Conversation, error) {
	if groupID == uuid.Nil || userID == uuid.Nil {
		return conversation.Conversation{}, ErrMemberFieldsMissing
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		access := proxy.NewAccessControl(tx.Conversations())
		group, err := access.LoadGroup(ctx, groupID)
		if err != nil {
			return err
		}
		if err := access.EnsureGroupAdmin(group, requesterID, deniedRemove); err != nil {
			return err
		}
		if err := tx.Conversations().RemoveParticipant(ctx, groupID, userID); err != nil {
			return err
		}
		if err := tx.Conversations().Touch(ctx, groupID, time.Now()); err != nil {
			return err
		}
		return recordEvent(ctx, tx, events.EventTypeParticipantRemoved, groupID, events.ParticipantChanged{
			ConversationID: groupID,
			UserID:         userID,
			ChangedBy:      requesterID,
		})
	})
	if err != nil {
		return conversation.Conversation{}, err
	}
	return s.store.Conversations().GetByID(ctx, groupID)
}

// ListForUser returns every conversation userID takes part in, most recently
// updated first.
func (s *ConversationService) ListForUser(ctx context.Context, userID uuid.UUID) ([]conversation.Conversation, error) {
	return s.store.Conversations().GetUserConversations(ctx, userID)
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
