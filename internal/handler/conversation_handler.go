package handler

import (
	"context"
	"net/http"

	"relay-chat/internal/domain/conversation"
	"relay-chat/internal/services"
	"relay-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ConversationHandler serves the conversation list and group administration.
type ConversationHandler struct {
	service *services.ConversationService
}

func NewConversationHandler(service *services.ConversationService) *ConversationHandler {
	return &ConversationHandler{service: service}
}

func (h *ConversationHandler) List(c *gin.Context) {
	me, ok := currentUser(c)
	if !ok {
		return
	}

	convs, err := h.service.ListForUser(c.Request.Context(), me.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.FromConversationSlice(convs))
}

func (h *ConversationHandler) CreateGroup(c *gin.Context) {
	me, ok := currentUser(c)
	if !ok {
		return
	}
	var req httpdto.CreateGroupRequest
	if !bindJSON(c, &req) {
		return
	}

	group, err := h.service.CreateGroup(c.Request.Context(), me.ID, req.ChatName, req.Users)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.FromConversation(group))
}

func (h *ConversationHandler) RenameGroup(c *gin.Context) {
	me, ok := currentUser(c)
	if !ok {
		return
	}
	var req httpdto.RenameGroupRequest
	if !bindJSON(c, &req) {
		return
	}
	groupID, err := httpdto.ParseOptionalID(req.GroupID)
	if err != nil {
		writeError(c, errInvalidID)
		return
	}

	group, err := h.service.RenameGroup(c.Request.Context(), me.ID, groupID, req.ChatName)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.FromConversation(group))
}

func (h *ConversationHandler) AddMember(c *gin.Context) {
	h.changeMember(c, h.service.AddMember)
}

func (h *ConversationHandler) RemoveMember(c *gin.Context) {
	h.changeMember(c, h.service.RemoveMember)
}

type memberChange = func(ctx context.Context, requesterID, groupID, userID uuid.UUID) (conversation.Conversation, error)

func (h *ConversationHandler) changeMember(c *gin.Context, apply memberChange) {
	me, ok := currentUser(c)
	if !ok {
		return
	}
	var req httpdto.GroupMemberRequest
	if !bindJSON(c, &req) {
		return
	}
	groupID, err := httpdto.ParseOptionalID(req.GroupID)
	if err != nil {
		writeError(c, errInvalidID)
		return
	}
	userID, err := httpdto.ParseOptionalID(req.UserID)
	if err != nil {
		writeError(c, errInvalidID)
		return
	}

	group, err := apply(c.Request.Context(), me.ID, groupID, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.FromConversation(group))
}
