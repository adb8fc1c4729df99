package database

import (
	"context"
	"testing"
	"time"

	"relay-chat/config"
	"relay-chat/internal/domain/conversation"
	"relay-chat/internal/domain/user"
	"relay-chat/internal/redis"
	"relay-chat/internal/repository"
	"relay-chat/internal/services"
	"relay-chat/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed_IsRepeatable(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := &config.Config{JWTSecret: "seed-secret", JWTExpiryDays: 30, AvatarBaseURL: "https://avatar.example"}
	ctx := context.Background()

	first, err := Seed(ctx, db, cfg, nil, nil)
	require.NoError(t, err)
	require.Len(t, first.Users, 3)
	assert.Equal(t, "Team", first.Group.ChatName)
	assert.Len(t, first.Group.Participants, 3)
	require.NotNil(t, first.Group.GroupAdminID)
	assert.Equal(t, first.Users[0].ID, *first.Group.GroupAdminID)
	assert.Equal(t, "hi", first.Direct.Content)

	second, err := Seed(ctx, db, cfg, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, first.Users[0].ID, second.Users[0].ID)
	assert.Equal(t, first.Group.ID, second.Group.ID)

	var groups int64
	require.NoError(t, db.Model(&conversation.Conversation{}).Where("is_group_chat = ?", true).Count(&groups).Error)
	assert.EqualValues(t, 1, groups)
}

func TestHealthCheck(t *testing.T) {
	db := testutil.NewDB(t)
	assert.NoError(t, HealthCheck(context.Background(), db))
	assert.Error(t, HealthCheck(context.Background(), nil))
}

func TestDSN(t *testing.T) {
	dsn := DSN(&config.Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "chat", DBPort: "5432", DBSSLMode: "require"})
	assert.Equal(t, "host=db user=u password=p dbname=chat port=5432 sslmode=require TimeZone=UTC", dsn)
}

func TestReset_FlushesCachedProfiles(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := &config.Config{JWTSecret: "seed-secret", JWTExpiryDays: 30, AvatarBaseURL: "https://avatar.example"}
	ctx := context.Background()

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	profiles := services.NewUserService(repository.NewStore(db).Users(), redis.NewCacheStore(rdb, redis.CacheConfig{UserTTL: time.Hour}), nil)

	seeded, err := Seed(ctx, db, cfg, nil, nil)
	require.NoError(t, err)
	alice := seeded.Users[0]

	_, err = profiles.GetProfile(ctx, alice.ID)
	require.NoError(t, err)
	require.True(t, mr.Exists("user:"+alice.ID.String()))

	require.NoError(t, Reset(ctx, db, profiles))

	assert.False(t, mr.Exists("user:"+alice.ID.String()))
	_, err = profiles.GetProfile(ctx, alice.ID)
	assert.ErrorIs(t, err, services.ErrUserNotFound)

	var users int64
	require.NoError(t, db.Model(&user.User{}).Count(&users).Error)
	assert.Zero(t, users)
}

func TestDrop_WithoutCache(t *testing.T) {
	db := testutil.NewDB(t)
	require.NoError(t, Drop(context.Background(), db, nil))
	assert.False(t, db.Migrator().HasTable("users"))
}
