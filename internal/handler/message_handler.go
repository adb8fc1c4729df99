package handler

import (
	"net/http"

	"relay-chat/internal/services"
	"relay-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// MessageHandler serves direct and group message history and sending.
type MessageHandler struct {
	service *services.MessageService
}

func NewMessageHandler(service *services.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

// SendDirect handles POST /chat/send/:id where id is the recipient.
func (h *MessageHandler) SendDirect(c *gin.Context) {
	me, ok := currentUser(c)
	if !ok {
		return
	}
	recipientID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req httpdto.SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := h.service.SendDirect(c.Request.Context(), me.ID, recipientID, req.Message)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.FromMessage(msg))
}

// ListDirect handles GET /chat/:id where id is the counterpart.
func (h *MessageHandler) ListDirect(c *gin.Context) {
	me, ok := currentUser(c)
	if !ok {
		return
	}
	counterpartID, ok := pathID(c, "id")
	if !ok {
		return
	}

	msgs, err := h.service.ListDirect(c.Request.Context(), me.ID, counterpartID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.FromMessageSlice(msgs))
}

func (h *MessageHandler) SendGroup(c *gin.Context) {
	me, ok := currentUser(c)
	if !ok {
		return
	}
	groupID, ok := pathID(c, "groupId")
	if !ok {
		return
	}
	var req httpdto.SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := h.service.SendGroup(c.Request.Context(), me.ID, groupID, req.Message)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.FromMessage(msg))
}

func (h *MessageHandler) ListGroup(c *gin.Context) {
	me, ok := currentUser(c)
	if !ok {
		return
	}
	groupID, ok := pathID(c, "groupId")
	if !ok {
		return
	}

	msgs, err := h.service.ListGroup(c.Request.Context(), me.ID, groupID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.FromMessageSlice(msgs))
}
