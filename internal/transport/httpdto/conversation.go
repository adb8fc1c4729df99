package httpdto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"relay-chat/internal/domain/conversation"

	"github.com/google/uuid"
)

// UserIDList accepts either a JSON array of ids or a string holding a
// JSON-encoded array, and always decodes to typed ids.
type UserIDList []uuid.UUID

func (l *UserIDList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			return err
		}
		if encoded == "" {
			*l = nil
			return nil
		}
		data = []byte(encoded)
	}

	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.New("users must be a list of user ids")
	}

	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return fmt.Errorf("invalid user id %q", s)
		}
		ids = append(ids, id)
	}
	*l = ids
	return nil
}

// CreateGroupRequest is used for POST /group/create
type CreateGroupRequest struct {
	ChatName string     `json:"chatName"`
	Users    UserIDList `json:"users"`
}

// RenameGroupRequest is used for PUT /group/rename
type RenameGroupRequest struct {
	GroupID  string `json:"groupId"`
	ChatName string `json:"chatName"`
}

// GroupMemberRequest is used for PUT /group/add and PUT /group/remove
type GroupMemberRequest struct {
	GroupID string `json:"groupId"`
	UserID  string `json:"userId"`
}

// ParseOptionalID parses an id that may be absent. An empty string yields
// uuid.Nil so that the caller can report the missing field itself.
func ParseOptionalID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(s)
}

type ConversationDTO struct {
	ID            string      `json:"id"`
	IsGroupChat   bool        `json:"isGroupChat"`
	ChatName      string      `json:"chatName,omitempty"`
	Users         []UserDTO   `json:"users"`
	GroupAdmin    *UserDTO    `json:"groupAdmin"`
	LatestMessage *MessageDTO `json:"latestMessage"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

func FromConversation(c conversation.Conversation) ConversationDTO {
	dto := ConversationDTO{
		ID:          c.ID.String(),
		IsGroupChat: c.IsGroupChat,
		ChatName:    c.ChatName,
		Users:       FromUserSlice(c.Participants),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if c.GroupAdmin != nil {
		admin := FromUser(*c.GroupAdmin)
		dto.GroupAdmin = &admin
	}
	if c.LatestMessage != nil {
		latest := FromMessage(*c.LatestMessage)
		dto.LatestMessage = &latest
	}
	return dto
}

func FromConversationSlice(conversations []conversation.Conversation) []ConversationDTO {
	out := make([]ConversationDTO, 0, len(conversations))
	for _, c := range conversations {
		out = append(out, FromConversation(c))
	}
	return out
}
