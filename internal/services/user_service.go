package services

import (
	"context"
	"errors"

	"relay-chat/internal/domain/user"
	"relay-chat/internal/redis"
	"relay-chat/internal/repository"
	apperrors "relay-chat/pkg/errors"
	"relay-chat/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ProfileCache is the subset of the Redis cache store used for profiles.
type ProfileCache interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*redis.UserCache, error)
	SetUserFromEntity(ctx context.Context, u user.User) error
	FlushUsers(ctx context.Context) (int64, error)
}

type UserService struct {
	userRepo repository.UserRepository
	cache    ProfileCache
	logger   *logger.Logger
	sfGroup  singleflight.Group
}

// NewUserService builds the service. cache may be nil, in which case every
// lookup goes to the database.
func NewUserService(userRepo repository.UserRepository, cache ProfileCache, log *logger.Logger) *UserService {
	if log == nil {
		log = logger.NewNop()
	}
	return &UserService{userRepo: userRepo, cache: cache, logger: log}
}

// GetProfile resolves a user id to its public profile. Concurrent misses for
// the same id share one database read.
func (s *UserService) GetProfile(ctx context.Context, id uuid.UUID) (user.User, error) {
	if s.cache != nil {
		cached, err := s.cache.GetUser(ctx, id)
		if err != nil {
			s.logger.WithContext(ctx).Warn("profile cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached.ToEntity(), nil
		}
	}

	// Shared by every caller waiting on id; it outlives the first caller.
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.sfGroup.Do(id.String(), func() (interface{}, error) {
		u, err := s.userRepo.GetUserByID(shared, id)
		if err != nil {
			return user.User{}, err
		}
		u.PasswordHash = ""
		if s.cache != nil {
			if err := s.cache.SetUserFromEntity(shared, u); err != nil {
				s.logger.WithContext(ctx).Warn("profile cache write failed", zap.Error(err))
			}
		}
		return u, nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return user.User{}, ErrUserNotFound
		}
		return user.User{}, err
	}
	return v.(user.User), nil
}

// FlushProfiles empties the profile cache so that users removed from the
// database stop resolving.
func (s *UserService) FlushProfiles(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	removed, err := s.cache.FlushUsers(ctx)
	if err != nil {
		return err
	}
	s.logger.WithContext(ctx).Info("profile cache flushed", zap.Int64("removed", removed))
	return nil
}

// ListOthers returns every user except the caller.
func (s *UserService) ListOthers(ctx context.Context, callerID uuid.UUID) ([]user.User, error) {
	users, err := s.userRepo.ListExcept(ctx, callerID)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}
