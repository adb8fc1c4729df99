package redis

import (
	"context"
	"net"
	"testing"
	"time"

	"relay-chat/internal/domain/user"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)

	client, err := Connect(context.Background(), Config{Host: host, Port: port}, time.Second)
	require.NoError(t, err)
	_ = client.Close()

	mr.Close()
	_, err = Connect(context.Background(), Config{Host: host, Port: port}, 200*time.Millisecond)
	assert.Error(t, err)
}

func TestRateLimiter_AllowAuth(t *testing.T) {
	mr, client := newTestClient(t)
	limiter := NewRateLimiter(client, RateLimitConfig{
		AuthLimit:     2,
		AuthWindow:    time.Minute,
		MessageLimit:  10,
		MessageWindow: time.Minute,
	})
	ctx := context.Background()

	res, err := limiter.AllowAuth(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 1, res.Remaining)
	assert.Equal(t, 2, res.Limit)

	res, err = limiter.AllowAuth(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)

	res, err = limiter.AllowAuth(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	// other IPs have their own window
	res, err = limiter.AllowAuth(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	mr.FastForward(time.Minute + time.Second)
	res, err = limiter.AllowAuth(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestRateLimiter_AllowMessage(t *testing.T) {
	_, client := newTestClient(t)
	limiter := NewRateLimiter(client, RateLimitConfig{
		AuthLimit:     1,
		AuthWindow:    time.Minute,
		MessageLimit:  1,
		MessageWindow: time.Minute,
	})
	ctx := context.Background()

	res, err := limiter.AllowMessage(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = limiter.AllowMessage(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.True(t, res.ResetIn > 0)

	res, err = limiter.AllowMessage(ctx, "user-2")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestCacheStore_UserRoundTrip(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewCacheStore(client, CacheConfig{UserTTL: time.Minute})
	ctx := context.Background()

	u := user.User{
		ID:           uuid.New(),
		FullName:     "Alice Doe",
		Username:     "alice",
		PasswordHash: "secret-hash",
		Gender:       user.GenderFemale,
		ProfilePic:   "https://example.test/girl?username=alice",
	}

	miss, err := cache.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, miss)

	require.NoError(t, cache.SetUserFromEntity(ctx, u))

	raw, err := mr.Get("user:" + u.ID.String())
	require.NoError(t, err)
	assert.NotContains(t, raw, "secret-hash")

	hit, err := cache.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "alice", hit.Username)
	assert.Empty(t, hit.ToEntity().PasswordHash)

	mr.FastForward(2 * time.Minute)
	expired, err := cache.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, expired)
}

func TestCacheStore_FlushUsers(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewCacheStore(client, DefaultCacheConfig())
	ctx := context.Background()

	ids := make([]uuid.UUID, 0, 150)
	for i := 0; i < 150; i++ {
		u := user.User{ID: uuid.New(), Username: "user"}
		require.NoError(t, cache.SetUserFromEntity(ctx, u))
		ids = append(ids, u.ID)
	}
	require.NoError(t, mr.Set("ratelimit:1.1.1.1:auth", "3"))

	removed, err := cache.FlushUsers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 150, removed)

	for _, id := range []uuid.UUID{ids[0], ids[99], ids[149]} {
		gone, err := cache.GetUser(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, gone)
	}
	assert.True(t, mr.Exists("ratelimit:1.1.1.1:auth"))

	removed, err = cache.FlushUsers(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestPublisher_Publish(t *testing.T) {
	_, client := newTestClient(t)
	ctx := context.Background()

	sub := client.Subscribe(ctx, "channel:conversation:abc")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	pub := NewPublisher(client)
	require.NoError(t, pub.Publish(ctx, "channel:conversation:abc", []byte(`{"event_type":"message.created"}`)))

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, `{"event_type":"message.created"}`, msg.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}
