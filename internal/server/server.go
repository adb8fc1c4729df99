package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"relay-chat/config"
	"relay-chat/internal/handler"
	"relay-chat/internal/middleware"
	"relay-chat/internal/outbox"
	"relay-chat/internal/transport/httpdto"
	"relay-chat/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
	outbox     *outbox.Runner
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Conversation *handler.ConversationHandler
	Message      *handler.MessageHandler
}

// Guards are the middlewares applied per route group. The rate limiters
// are nil when Redis is unavailable.
type Guards struct {
	Auth        gin.HandlerFunc
	AuthRate    gin.HandlerFunc
	MessageRate gin.HandlerFunc
}

// HealthFunc reports whether the database answers.
type HealthFunc func(ctx context.Context) error

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(middleware.Recovery(l))

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.AppPort),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

// Engine exposes the router, mainly for httptest.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) SetupRoutes(handlers *Handlers, guards Guards, health HealthFunc) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.MessageResponse{Message: "pong"})
	})

	s.engine.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := health(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	users := s.engine.Group("/user")
	{
		users.POST("/register", chain(guards.AuthRate, handlers.Auth.Register)...)
		users.POST("/login", chain(guards.AuthRate, handlers.Auth.Login)...)
		users.POST("/logout", handlers.Auth.Logout)
		users.GET("/all", guards.Auth, handlers.User.ListOthers)
	}

	chat := s.engine.Group("/chat", guards.Auth)
	{
		chat.GET("/conversations", handlers.Conversation.List)
		chat.POST("/send/:id", chain(guards.MessageRate, handlers.Message.SendDirect)...)
		chat.GET("/:id", handlers.Message.ListDirect)
	}

	group := s.engine.Group("/group", guards.Auth)
	{
		group.POST("/create", handlers.Conversation.CreateGroup)
		group.PUT("/rename", handlers.Conversation.RenameGroup)
		group.PUT("/add", handlers.Conversation.AddMember)
		group.PUT("/remove", handlers.Conversation.RemoveMember)
		group.POST("/message/:groupId", chain(guards.MessageRate, handlers.Message.SendGroup)...)
		group.GET("/messages/:groupId", handlers.Message.ListGroup)
	}
}

// chain drops nil middlewares.
func chain(hs ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(hs))
	for _, h := range hs {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}

func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if s.outbox != nil {
		s.outbox.Start(ctx)
	}

	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second*5)
	defer shutdownCancel()

	err := s.httpServer.Shutdown(shutdownCtx)

	cancel()
	if s.outbox != nil {
		s.outbox.Wait()
	}

	if err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}
	return nil
}
