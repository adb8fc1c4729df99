package message

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"relay-chat/internal/domain/user"
)

// Message represents the messages table
type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_conversation_created,priority:1"`
	SenderID       uuid.UUID `gorm:"type:uuid;not null"`
	Content        string    `gorm:"type:text;not null"`
	CreatedAt      time.Time `gorm:"index:idx_messages_conversation_created,priority:2"`
	UpdatedAt      time.Time

	// Relationships
	Sender user.User   `gorm:"foreignKey:SenderID"`
	ReadBy []user.User `gorm:"many2many:message_reads;"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (Message) TableName() string {
	return "messages"
}
