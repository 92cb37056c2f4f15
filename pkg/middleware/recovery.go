package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/mo-amir99/course-progress-server/pkg/apperrors"
	"github.com/mo-amir99/course-progress-server/pkg/response"
)

// Recovery recovers from panics, logs the stack and answers with a generic 500.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.ErrorContext(c.Request.Context(),
					"panic recovered",
					slog.String("request_id", GetRequestID(c)),
					slog.String("method", c.Request.Method),
					slog.String("path", c.Request.URL.Path),
					slog.String("client_ip", c.ClientIP()),
					slog.Any("error", err),
					slog.String("stack", string(debug.Stack())),
				)

				response.AppError(c, apperrors.Internal(nil))
				c.Abort()
			}
		}()

		c.Next()
	}
}
