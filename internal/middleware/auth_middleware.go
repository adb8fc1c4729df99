package middleware

import (
	"context"
	"net/http"

	"relay-chat/internal/domain/user"
	"relay-chat/internal/services"
	"relay-chat/internal/transport/httpdto"
	"relay-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TokenParser interface {
	ParseToken(token string) (uuid.UUID, error)
}

type ProfileResolver interface {
	GetProfile(ctx context.Context, id uuid.UUID) (user.User, error)
}

// AuthMiddleware reads the session cookie, verifies it and stores the
// caller's public profile in the request context.
func AuthMiddleware(cookieName string, tokens TokenParser, profiles ProfileResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			abortWithError(c, services.ErrNoToken)
			return
		}

		userID, err := tokens.ParseToken(token)
		if err != nil {
			abortWithError(c, err)
			return
		}

		profile, err := profiles.GetProfile(c.Request.Context(), userID)
		if err != nil {
			abortWithError(c, err)
			return
		}

		ctx := services.WithUser(c.Request.Context(), profile)
		ctx = context.WithValue(ctx, logger.UserIdKey, profile.ID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func abortWithError(c *gin.Context, err error) {
	status := services.HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		message = "Internal Server Error"
	}
	c.AbortWithStatusJSON(status, httpdto.NewErrorResponse(message, httpdto.CodeForStatus(status)))
}
