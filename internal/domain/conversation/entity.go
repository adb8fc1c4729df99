package conversation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"relay-chat/internal/domain/message"
	"relay-chat/internal/domain/user"
)

// Conversation represents the conversations table. A direct conversation
// carries a DirectKey built from its two participants; group conversations
// leave it NULL.
type Conversation struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	IsGroupChat     bool       `gorm:"not null;default:false"`
	ChatName        string     `gorm:"type:varchar(100)"`
	DirectKey       *string    `gorm:"type:varchar(80);uniqueIndex"`
	GroupAdminID    *uuid.UUID `gorm:"type:uuid"`
	LatestMessageID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Relationships
	Participants  []user.User      `gorm:"many2many:conversation_participants;"`
	GroupAdmin    *user.User       `gorm:"foreignKey:GroupAdminID"`
	LatestMessage *message.Message `gorm:"foreignKey:LatestMessageID"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Participant represents the conversation_participants join table
type Participant struct {
	ConversationID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	JoinedAt       time.Time
}

func (p *Participant) BeforeCreate(tx *gorm.DB) error {
	if p.JoinedAt.IsZero() {
		p.JoinedAt = time.Now()
	}
	return nil
}

func (Conversation) TableName() string {
	return "conversations"
}

func (Participant) TableName() string {
	return "conversation_participants"
}

// DirectKey returns the canonical key for the unordered pair {a, b}.
func DirectKey(a, b uuid.UUID) string {
	x, y := a.String(), b.String()
	if y < x {
		x, y = y, x
	}
	return x + ":" + y
}

// HasParticipant reports whether userID is among the loaded participants.
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	for _, p := range c.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}
