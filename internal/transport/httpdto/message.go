package httpdto

import (
	"time"

	"relay-chat/internal/domain/message"
)

// SendMessageRequest is used for POST /chat/send/:id and
// POST /group/message/:groupId
type SendMessageRequest struct {
	Message string `json:"message"`
}

type MessageDTO struct {
	ID             string         `json:"id"`
	ConversationID string         `json:"conversationId"`
	Sender         UserSummaryDTO `json:"sender"`
	Content        string         `json:"content"`
	ReadBy         []string       `json:"readBy"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

func FromMessage(m message.Message) MessageDTO {
	readBy := make([]string, 0, len(m.ReadBy))
	for _, u := range m.ReadBy {
		readBy = append(readBy, u.ID.String())
	}
	sender := FromUserSummary(m.Sender)
	if m.Sender.ID != m.SenderID {
		sender = UserSummaryDTO{ID: m.SenderID.String()}
	}
	return MessageDTO{
		ID:             m.ID.String(),
		ConversationID: m.ConversationID.String(),
		Sender:         sender,
		Content:        m.Content,
		ReadBy:         readBy,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func FromMessageSlice(messages []message.Message) []MessageDTO {
	out := make([]MessageDTO, 0, len(messages))
	for _, m := range messages {
		out = append(out, FromMessage(m))
	}
	return out
}
