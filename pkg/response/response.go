package response

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mo-amir99/course-progress-server/pkg/apperrors"
)

// Envelope represents the standard API response shape.
type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Code       string      `json:"code,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Error      interface{} `json:"error,omitempty"`
	Pagination interface{} `json:"pagination,omitempty"`
}

// Success writes a success response with optional message and data.
func Success(c *gin.Context, status int, data interface{}, message string, pagination interface{}) {
	c.JSON(status, Envelope{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: pagination,
	})
}

// Created is a convenience helper for POST 201 responses.
func Created(c *gin.Context, data interface{}, message string) {
	Success(c, http.StatusCreated, data, message, nil)
}

// Error writes an error response capturing the message and optional error payload.
// Server errors never expose the payload.
func Error(c *gin.Context, status int, message string, err interface{}) {
	if status >= http.StatusInternalServerError {
		err = nil
	}
	if e, ok := err.(error); ok {
		err = e.Error()
	}
	c.JSON(status, Envelope{
		Success: false,
		Message: message,
		Error:   err,
	})
}

// ErrorWithLog writes an error response and logs the error via slog.
func ErrorWithLog(logger *slog.Logger, c *gin.Context, status int, message string, err error) {
	if logger != nil && err != nil {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, message,
			slog.Int("status", status),
			slog.String("path", c.FullPath()),
			slog.String("error", err.Error()),
		)
	}

	Error(c, status, message, err)
}

// ErrorWithData writes an error response that also carries a data payload.
func ErrorWithData(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Envelope{
		Success: false,
		Message: message,
		Data:    data,
	})
}

// SuccessFields writes a success response whose payload fields sit next to
// success and message instead of under data.
func SuccessFields(c *gin.Context, status int, message string, fields map[string]interface{}) {
	body := make(map[string]interface{}, len(fields)+2)
	for k, v := range fields {
		body[k] = v
	}
	body["success"] = true
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

// AppError writes an envelope for a request-layer error, including its code
// and any field errors. The cause is never serialized.
func AppError(c *gin.Context, err *apperrors.Error) {
	env := Envelope{
		Success: false,
		Message: err.Message(),
		Code:    string(err.Code()),
	}
	if fields := err.Fields(); len(fields) > 0 {
		env.Error = fields
	}
	c.JSON(err.StatusCode(), env)
}
