package server

import (
	"context"
	"time"

	"relay-chat/config"
	"relay-chat/internal/handler"
	"relay-chat/internal/middleware"
	"relay-chat/internal/outbox"
	"relay-chat/internal/redis"
	"relay-chat/internal/repository"
	"relay-chat/internal/services"
	"relay-chat/pkg/database"
	"relay-chat/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Build assembles repositories, services and handlers on top of db. rdb may
// be nil, which turns off the profile cache, rate limiting and the outbox
// processor. Outbox events are still recorded.
func Build(cfg *config.Config, l *logger.Logger, db *gorm.DB, rdb *goredis.Client) *Server {
	store := repository.NewStore(db)

	var cache services.ProfileCache
	guards := Guards{}

	s := New(cfg, l)

	if rdb != nil {
		cache = redis.NewCacheStore(rdb, cacheConfig(cfg))

		limiter := redis.NewRateLimiter(rdb, rateLimitConfig(cfg))
		guards.AuthRate = middleware.AuthRateLimitMiddleware(limiter, l)
		guards.MessageRate = middleware.MessageRateLimitMiddleware(limiter, l)

		if cfg.OutboxEnabled {
			s.outbox = outbox.NewRunner(outbox.DefaultProcessor(store.Outbox(), redis.NewPublisher(rdb), l))
		}
	}

	authService := services.NewAuthService(store.Users(), cfg)
	userService := services.NewUserService(store.Users(), cache, l)

	// Profiles cached by an earlier process may belong to users that no
	// longer exist.
	flushCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := userService.FlushProfiles(flushCtx); err != nil && l != nil {
		l.Warnf("failed to flush profile cache: %s", err)
	}
	cancel()
	guards.Auth = middleware.AuthMiddleware(cfg.CookieName, authService, userService)

	handlers := &Handlers{
		Auth:         handler.NewAuthHandler(authService, cfg.CookieName, !cfg.IsDevelopment()),
		User:         handler.NewUserHandler(userService),
		Conversation: handler.NewConversationHandler(services.NewConversationService(store)),
		Message:      handler.NewMessageHandler(services.NewMessageService(store)),
	}

	s.SetupRoutes(handlers, guards, func(ctx context.Context) error {
		return database.HealthCheck(ctx, db)
	})
	return s
}

// cacheConfig falls back to the package defaults for unset values.
func cacheConfig(cfg *config.Config) redis.CacheConfig {
	c := redis.DefaultCacheConfig()
	if cfg.ProfileCacheTTL > 0 {
		c.UserTTL = cfg.ProfileCacheTTL
	}
	return c
}

func rateLimitConfig(cfg *config.Config) redis.RateLimitConfig {
	c := redis.DefaultRateLimitConfig()
	if cfg.RateLimitMessages > 0 {
		c.MessageLimit = cfg.RateLimitMessages
	}
	if cfg.RateLimitAuth > 0 {
		c.AuthLimit = cfg.RateLimitAuth
	}
	return c
}
