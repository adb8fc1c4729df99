package proxy

import (
	"context"
	"errors"

	"relay-chat/internal/domain/conversation"
	"relay-chat/internal/repository"
	apperrors "relay-chat/pkg/errors"

	"github.com/google/uuid"
)

var (
	ErrGroupNotFound = apperrors.NotFound("Group not found")
	ErrNotMember     = apperrors.Forbidden("You are not a member of this group")
)

// AccessControl answers group authorization questions against one
// conversation repository, which may be bound to a transaction.
type AccessControl struct {
	conversationRepo repository.ConversationRepository
}

func NewAccessControl(conversationRepo repository.ConversationRepository) *AccessControl {
	return &AccessControl{conversationRepo: conversationRepo}
}

// LoadGroup resolves a group conversation. Direct conversations are reported
// as missing groups.
func (a *AccessControl) LoadGroup(ctx context.Context, groupID uuid.UUID) (conversation.Conversation, error) {
	group, err := a.conversationRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return conversation.Conversation{}, ErrGroupNotFound
		}
		return conversation.Conversation{}, err
	}
	if !group.IsGroupChat {
		return conversation.Conversation{}, ErrGroupNotFound
	}
	return group, nil
}

// EnsureGroupAdmin fails with a forbidden error carrying denied when userID
// is not the admin of group.
func (a *AccessControl) EnsureGroupAdmin(group conversation.Conversation, userID uuid.UUID, denied string) error {
	if group.GroupAdminID == nil || *group.GroupAdminID != userID {
		return apperrors.Forbidden(denied)
	}
	return nil
}

// CanAccessGroup loads the group and checks that userID is a current member.
func (a *AccessControl) CanAccessGroup(ctx context.Context, userID, groupID uuid.UUID) (conversation.Conversation, error) {
	group, err := a.LoadGroup(ctx, groupID)
	if err != nil {
		return conversation.Conversation{}, err
	}
	if err := a.ensureParticipant(ctx, group.ID, userID); err != nil {
		return conversation.Conversation{}, err
	}
	return group, nil
}

func (a *AccessControl) ensureParticipant(ctx context.Context, conversationID, userID uuid.UUID) error {
	ok, err := a.conversationRepo.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotMember
	}
	return nil
}
