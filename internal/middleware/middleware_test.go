package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"relay-chat/internal/domain/user"
	"relay-chat/internal/redis"
	"relay-chat/internal/services"
	"relay-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubTokens struct {
	id  uuid.UUID
	err error
}

func (s stubTokens) ParseToken(string) (uuid.UUID, error) { return s.id, s.err }

type stubProfiles map[uuid.UUID]user.User

func (s stubProfiles) GetProfile(_ context.Context, id uuid.UUID) (user.User, error) {
	u, ok := s[id]
	if !ok {
		return user.User{}, services.ErrUserNotFound
	}
	return u, nil
}

func guarded(tokens TokenParser, profiles ProfileResolver) *gin.Engine {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/me", AuthMiddleware("jwt", tokens, profiles), func(c *gin.Context) {
		u, ok := services.UserFromContext(c.Request.Context())
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"username": u.Username})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	alice := user.User{ID: uuid.New(), Username: "alice"}
	profiles := stubProfiles{alice.ID: alice}

	tests := []struct {
		name   string
		cookie string
		tokens stubTokens
		status int
		body   string
	}{
		{"no cookie", "", stubTokens{}, http.StatusUnauthorized, "Unauthorized - No Token Provided"},
		{"bad token", "x", stubTokens{err: services.ErrInvalidToken}, http.StatusUnauthorized, "Unauthorized - Invalid Token"},
		{"unknown user", "x", stubTokens{id: uuid.New()}, http.StatusNotFound, "User not found"},
		{"ok", "x", stubTokens{id: alice.ID}, http.StatusOK, `"username":"alice"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "jwt", Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			guarded(tt.tokens, profiles).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
}

func TestAuthMiddleware_UnexpectedErrorIsGeneric(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(logger.NewNop()))
	r.GET("/me", AuthMiddleware("jwt", stubTokens{err: errors.New("boom")}, stubProfiles{}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: "x"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Internal Server Error","code":"INTERNAL_ERROR"}`, rec.Body.String())
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	var seen interface{}
	r.GET("/", func(c *gin.Context) {
		seen = c.Request.Context().Value(logger.RequestIdKey)
		c.Status(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := rec.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 32)
	assert.Equal(t, generated, seen)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get(RequestIDHeader))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(logger.NewNop()))
	r.GET("/", func(c *gin.Context) { panic("kaboom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal Server Error")
}

type stubLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (s *stubLimiter) result() (*redis.RateLimitResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &redis.RateLimitResult{Allowed: s.allowed, Limit: 5, ResetIn: 30 * time.Second}, nil
}

func (s *stubLimiter) AllowAuth(_ context.Context, ip string) (*redis.RateLimitResult, error) {
	s.keys = append(s.keys, "auth:"+ip)
	return s.result()
}

func (s *stubLimiter) AllowMessage(_ context.Context, userID string) (*redis.RateLimitResult, error) {
	s.keys = append(s.keys, "msg:"+userID)
	return s.result()
}

func TestAuthRateLimitMiddleware(t *testing.T) {
	tests := []struct {
		name    string
		limiter *stubLimiter
		status  int
	}{
		{"allowed", &stubLimiter{allowed: true}, http.StatusOK},
		{"exhausted", &stubLimiter{allowed: false}, http.StatusTooManyRequests},
		{"redis down", &stubLimiter{err: errors.New("dial tcp")}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/login", AuthRateLimitMiddleware(tt.limiter, logger.NewNop()), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/login", nil)
			req.RemoteAddr = "203.0.113.7:5555"
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			require.Len(t, tt.limiter.keys, 1)
			assert.Equal(t, "auth:203.0.113.7", tt.limiter.keys[0])
			if tt.limiter.err == nil {
				assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
				assert.Equal(t, "30", rec.Header().Get("X-RateLimit-Reset"))
			}
		})
	}
}

func TestMessageRateLimitMiddleware_KeysByUser(t *testing.T) {
	alice := user.User{ID: uuid.New(), Username: "alice"}
	limiter := &stubLimiter{allowed: false}

	r := gin.New()
	r.POST("/send", AuthMiddleware("jwt", stubTokens{id: alice.ID}, stubProfiles{alice.ID: alice}),
		MessageRateLimitMiddleware(limiter, nil),
		func(c *gin.Context) { c.Status(http.StatusCreated) })

	req := httptest.NewRequest(http.MethodPost, "/send", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: "x"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, []string{"msg:" + alice.ID.String()}, limiter.keys)
	assert.Contains(t, rec.Body.String(), "Message rate limit exceeded")
}
