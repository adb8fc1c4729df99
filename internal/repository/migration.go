package repository

import (
	"fmt"

	"relay-chat/internal/domain/conversation"
	"relay-chat/internal/domain/message"
	"relay-chat/internal/domain/outbox"
	"relay-chat/internal/domain/user"

	"gorm.io/gorm"
)

// Models lists every table owned by the application, parents first.
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&message.Message{},
		&conversation.Conversation{},
		&conversation.Participant{},
		&outbox.OutboxEvent{},
	}
}

// InitSchema registers the custom participant join table and runs the gorm
// auto-migration. It is safe to call on every start.
func InitSchema(db *gorm.DB) error {
	if err := db.SetupJoinTable(&conversation.Conversation{}, "Participants", &conversation.Participant{}); err != nil {
		return fmt.Errorf("failed to setup join table: %w", err)
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}
	return nil
}

// DropSchema removes every application table, join tables included.
func DropSchema(db *gorm.DB) error {
	tables := []interface{}{"message_reads"}
	for i := len(Models()) - 1; i >= 0; i-- {
		tables = append(tables, Models()[i])
	}
	if err := db.Migrator().DropTable(tables...); err != nil {
		return fmt.Errorf("drop schema failed: %w", err)
	}
	return nil
}
