package middleware

import (
	"net/http"

	"relay-chat/internal/transport/httpdto"
	"relay-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler logs the errors attached by handlers. The response body has
// already been written by then; a handler that attached an error without
// responding gets the generic 500.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		if l != nil {
			log := l.WithContext(c.Request.Context())
			for _, e := range c.Errors {
				log.Error("request error",
					zap.String("method", c.Request.Method),
					zap.String("path", c.FullPath()),
					zap.Error(e.Err),
				)
			}
		}

		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("Internal Server Error", httpdto.CodeInternal))
		}
	}
}

// Recovery turns panics into the generic 500 response.
func Recovery(l *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		if l != nil {
			l.WithContext(c.Request.Context()).Error("panic recovered", zap.Any("panic", recovered))
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, httpdto.NewErrorResponse("Internal Server Error", httpdto.CodeInternal))
	})
}
