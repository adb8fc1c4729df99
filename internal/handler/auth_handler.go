// Package handler provides HTTP handlers for API endpoints.
package handler

import (
	"net/http"

	"relay-chat/internal/services"
	"relay-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles account and session endpoints under /user.
type AuthHandler struct {
	service      *services.AuthService
	cookieName   string
	secureCookie bool
}

func NewAuthHandler(service *services.AuthService, cookieName string, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		service:      service,
		cookieName:   cookieName,
		secureCookie: secureCookie,
	}
}

// Register creates an account and starts a session.
func (h *AuthHandler) Register(c *gin.Context) {
	var req httpdto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.service.Register(c.Request.Context(), services.RegisterInput{
		FullName:        req.FullName,
		Username:        req.Username,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Gender:          req.Gender,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	h.setSessionCookie(c, session)
	c.JSON(http.StatusCreated, httpdto.FromUser(session.User))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req httpdto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.service.Login(c.Request.Context(), services.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	h.setSessionCookie(c, session)
	c.JSON(http.StatusOK, httpdto.FromUser(session.User))
}

// Logout expires the session cookie. It succeeds with or without a session.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.cookieName, "", -1, "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, httpdto.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, session services.Session) {
	maxAge := int(h.service.SessionTTL().Seconds())
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.cookieName, session.Token, maxAge, "/", "", h.secureCookie, true)
}
