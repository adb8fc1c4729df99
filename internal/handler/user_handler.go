package handler

import (
	"net/http"

	"relay-chat/internal/services"
	"relay-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// ListOthers returns every registered user except the caller.
func (h *UserHandler) ListOthers(c *gin.Context) {
	me, ok := currentUser(c)
	if !ok {
		return
	}

	users, err := h.service.ListOthers(c.Request.Context(), me.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.FromUserSlice(users))
}
