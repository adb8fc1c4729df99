package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"relay-chat/internal/domain/user"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// Cache key patterns:
// - user:{user_id} - public profile, no credential

// CacheConfig contains configuration for caching
type CacheConfig struct {
	UserTTL time.Duration
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		UserTTL: 5 * time.Minute,
	}
}

// CacheStore handles caching in Redis
type CacheStore struct {
	client *goredis.Client
	config CacheConfig
}

func NewCacheStore(client *goredis.Client, config CacheConfig) *CacheStore {
	return &CacheStore{
		client: client,
		config: config,
	}
}

// UserCache is the cached public profile. The password hash is never stored.
type UserCache struct {
	ID         uuid.UUID `json:"id"`
	FullName   string    `json:"full_name"`
	Username   string    `json:"username"`
	Gender     string    `json:"gender"`
	ProfilePic string    `json:"profile_pic"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ToEntity converts the cached profile back to a user with an empty hash.
func (u UserCache) ToEntity() user.User {
	return user.User{
		ID:         u.ID,
		FullName:   u.FullName,
		Username:   u.Username,
		Gender:     u.Gender,
		ProfilePic: u.ProfilePic,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// GetUser retrieves a user from cache. A miss returns nil, nil.
func (c *CacheStore) GetUser(ctx context.Context, userID uuid.UUID) (*UserCache, error) {
	data, err := c.client.Get(ctx, userKey(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var u UserCache
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// SetUserFromEntity stores the public fields of u
func (c *CacheStore) SetUserFromEntity(ctx context.Context, u user.User) error {
	data, err := json.Marshal(UserCache{
		ID:         u.ID,
		FullName:   u.FullName,
		Username:   u.Username,
		Gender:     u.Gender,
		ProfilePic: u.ProfilePic,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, userKey(u.ID), data, c.config.UserTTL).Err()
}

// FlushUsers drops every cached profile and returns how many were removed.
// Run it whenever users are removed from the database behind the service.
func (c *CacheStore) FlushUsers(ctx context.Context) (int64, error) {
	var removed int64
	batch := make([]string, 0, 100)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := c.client.Del(ctx, batch...).Result()
		removed += n
		batch = batch[:0]
		return err
	}

	iter := c.client.Scan(ctx, 0, userKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := flush(); err != nil {
				return removed, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, err
	}
	return removed, flush()
}

const userKeyPrefix = "user:"

func userKey(userID uuid.UUID) string {
	return fmt.Sprintf("%s%s", userKeyPrefix, userID.String())
}
