package handler

import (
	"errors"
	"net/http"

	"relay-chat/internal/domain/user"
	"relay-chat/internal/services"
	"relay-chat/internal/transport/httpdto"
	apperrors "relay-chat/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var (
	errInvalidBody = apperrors.InvalidInput("Invalid request body")
	errInvalidID   = apperrors.InvalidInput("Invalid ID")
)

// writeError renders a service error. Anything without a known kind is
// attached to the context for the error middleware and answered with the
// generic 500.
func writeError(c *gin.Context, err error) {
	status := services.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, httpdto.NewErrorResponse("Internal Server Error", httpdto.CodeInternal))
		return
	}

	message := err.Error()
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	c.JSON(status, httpdto.NewErrorResponse(message, httpdto.CodeForStatus(status)))
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, errInvalidBody)
		return false
	}
	return true
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		writeError(c, errInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// currentUser returns the profile stored by AuthMiddleware.
func currentUser(c *gin.Context) (user.User, bool) {
	u, ok := services.UserFromContext(c.Request.Context())
	if !ok {
		writeError(c, services.ErrNoToken)
	}
	return u, ok
}
