package database

import (
	"context"
	"errors"
	"fmt"

	"relay-chat/config"
	"relay-chat/internal/domain/conversation"
	"relay-chat/internal/domain/message"
	"relay-chat/internal/domain/user"
	"relay-chat/internal/repository"
	"relay-chat/internal/services"
	apperrors "relay-chat/pkg/errors"
	"relay-chat/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SeedConfig holds configuration for seeding the database
type SeedConfig struct {
	Password  string
	Users     []SeedUser
	GroupName string
	Greeting  string
}

type SeedUser struct {
	Username string
	FullName string
	Gender   string
}

// DefaultSeedConfig returns the development data set.
func DefaultSeedConfig() *SeedConfig {
	return &SeedConfig{
		Password: "password123",
		Users: []SeedUser{
			{Username: "alice", FullName: "Alice Example", Gender: user.GenderFemale},
			{Username: "bob", FullName: "Bob Example", Gender: user.GenderMale},
			{Username: "carol", FullName: "Carol Example", Gender: user.GenderFemale},
		},
		GroupName: "Team",
		Greeting:  "hi",
	}
}

// SeedResult holds the result of the seeding operation
type SeedResult struct {
	Users  []user.User
	Group  *conversation.Conversation
	Direct *message.Message
}

// Seed creates the configured users, then a group administered by the first
// user and a direct message from the first to the second. Users that already
// exist are reused.
func Seed(ctx context.Context, db *gorm.DB, appCfg *config.Config, cfg *SeedConfig, l *logger.Logger) (*SeedResult, error) {
	if cfg == nil {
		cfg = DefaultSeedConfig()
	}
	if len(cfg.Users) < 3 {
		return nil, errors.New("seed needs at least 3 users")
	}

	store := repository.NewStore(db)
	auth := services.NewAuthService(store.Users(), appCfg)
	result := &SeedResult{}

	for _, su := range cfg.Users {
		u, err := seedUser(ctx, store, auth, su, cfg.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to seed user %s: %w", su.Username, err)
		}
		result.Users = append(result.Users, u)
	}

	admin := result.Users[0]
	members := make([]user.User, 0, len(result.Users)-1)
	members = append(members, result.Users[1:]...)

	group, err := seedGroup(ctx, services.NewConversationService(store), admin.ID, cfg.GroupName, userIDs(members))
	if err != nil {
		return nil, fmt.Errorf("failed to seed group: %w", err)
	}
	result.Group = &group

	msg, err := services.NewMessageService(store).SendDirect(ctx, admin.ID, result.Users[1].ID, cfg.Greeting)
	if err != nil {
		return nil, fmt.Errorf("failed to seed direct message: %w", err)
	}
	result.Direct = &msg

	if l != nil {
		l.Infof("Seeded %d users, group %q and one direct message", len(result.Users), group.ChatName)
	}
	return result, nil
}

func seedUser(ctx context.Context, store repository.Store, auth *services.AuthService, su SeedUser, password string) (user.User, error) {
	existing, err := store.Users().GetUserByUsername(ctx, su.Username)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return user.User{}, err
	}

	session, err := auth.Register(ctx, services.RegisterInput{
		FullName:        su.FullName,
		Username:        su.Username,
		Password:        password,
		ConfirmPassword: password,
		Gender:          su.Gender,
	})
	if err != nil {
		return user.User{}, err
	}
	return session.User, nil
}

// seedGroup reuses a group of the same name the admin already belongs to.
func seedGroup(ctx context.Context, convs *services.ConversationService, adminID uuid.UUID, name string, members []uuid.UUID) (conversation.Conversation, error) {
	existing, err := convs.ListForUser(ctx, adminID)
	if err != nil {
		return conversation.Conversation{}, err
	}
	for _, c := range existing {
		if c.IsGroupChat && c.ChatName == name {
			return c, nil
		}
	}
	return convs.CreateGroup(ctx, adminID, name, members)
}

func userIDs(users []user.User) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}

// ProfileFlusher empties cached user profiles. *services.UserService
// implements it.
type ProfileFlusher interface {
	FlushProfiles(ctx context.Context) error
}

// Drop removes every table. Cached profiles are flushed afterwards so old
// sessions stop resolving; profiles may be nil when no cache is configured.
func Drop(ctx context.Context, db *gorm.DB, profiles ProfileFlusher) error {
	if err := repository.DropSchema(db); err != nil {
		return fmt.Errorf("drop schema: %w", err)
	}
	if profiles != nil {
		if err := profiles.FlushProfiles(ctx); err != nil {
			return fmt.Errorf("flush profile cache: %w", err)
		}
	}
	return nil
}

// Reset drops every table and recreates the schema.
func Reset(ctx context.Context, db *gorm.DB, profiles ProfileFlusher) error {
	if err := Drop(ctx, db, profiles); err != nil {
		return err
	}
	return repository.InitSchema(db)
}
