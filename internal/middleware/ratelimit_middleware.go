package middleware

import (
	"context"
	"net/http"
	"strconv"

	"relay-chat/internal/redis"
	"relay-chat/internal/services"
	"relay-chat/internal/transport/httpdto"
	"relay-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RateLimiter interface {
	AllowAuth(ctx context.Context, ip string) (*redis.RateLimitResult, error)
	AllowMessage(ctx context.Context, userID string) (*redis.RateLimitResult, error)
}

// AuthRateLimitMiddleware limits register/login attempts per client IP.
// A Redis failure lets the request through.
func AuthRateLimitMiddleware(limiter RateLimiter, l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := limiter.AllowAuth(c.Request.Context(), c.ClientIP())
		enforce(c, result, err, l, "Too many attempts, please try again later")
	}
}

// MessageRateLimitMiddleware limits message sends per user. It must run
// after AuthMiddleware.
func MessageRateLimitMiddleware(limiter RateLimiter, l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := services.UserFromContext(c.Request.Context())
		if !ok {
			c.Next()
			return
		}
		result, err := limiter.AllowMessage(c.Request.Context(), u.ID.String())
		enforce(c, result, err, l, "Message rate limit exceeded")
	}
}

func enforce(c *gin.Context, result *redis.RateLimitResult, err error, l *logger.Logger, message string) {
	if err != nil {
		if l != nil {
			l.WithContext(c.Request.Context()).Warn("rate limit check failed", zap.Error(err))
		}
		c.Next()
		return
	}

	setRateLimitHeaders(c, result)

	if !result.Allowed {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, httpdto.NewErrorResponse(message, httpdto.CodeRateLimited))
		return
	}
	c.Next()
}

// setRateLimitHeaders sets standard rate limit response headers
func setRateLimitHeaders(c *gin.Context, result *redis.RateLimitResult) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(int64(result.ResetIn.Seconds()), 10))
}
