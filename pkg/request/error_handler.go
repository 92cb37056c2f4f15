package request

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mo-amir99/course-progress-server/pkg/apperrors"
	"github.com/mo-amir99/course-progress-server/pkg/response"
)

// Handler returns a middleware that turns errors pushed with c.Error into envelopes.
func Handler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := errors.Join(errorsFromContext(c.Errors)...)
		if err == nil {
			return
		}

		appErr := Classify(err)
		if logger != nil {
			level := slog.LevelWarn
			if appErr.StatusCode() >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.Log(c.Request.Context(), level, appErr.Message(),
				slog.Int("status", appErr.StatusCode()),
				slog.String("code", string(appErr.Code())),
				slog.String("path", c.FullPath()),
				slog.String("error", err.Error()),
			)
		}
		response.AppError(c, appErr)
	}
}

func errorsFromContext(errs []*gin.Error) []error {
	list := make([]error, 0, len(errs))
	for _, item := range errs {
		if item != nil && item.Err != nil {
			list = append(list, item.Err)
		}
	}
	return list
}

// Classify maps an error that escaped a feature handler to an apperrors.Error.
// Errors that already are one pass through unchanged.
func Classify(err error) *apperrors.Error {
	if appErr, ok := apperrors.As(err); ok {
		return appErr
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NotFound("Resource not found", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout(err)
	case strings.Contains(err.Error(), "invalid input syntax for type uuid"):
		return apperrors.Validation("Invalid ID format", err)
	}
	return apperrors.Internal(err)
}
