package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is the machine readable identifier sent to clients next to the message.
type Code string

const (
	CodeValidation Code = "validation_error"
	CodeNotFound   Code = "not_found"
	CodeTimeout    Code = "timeout"
	CodeTooMany    Code = "too_many_requests"
	CodeInternal   Code = "internal_error"
)

// Error is an HTTP-aware error produced by the request layer and middleware.
// Feature packages keep their own sentinel errors instead.
type Error struct {
	cause   error
	message string
	code    Code
	status  int
	fields  map[string]string
}

// New builds an Error. cause may be nil.
func New(status int, code Code, message string, cause error) *Error {
	return &Error{cause: cause, message: message, code: code, status: status}
}

// Validation is a 400 for malformed or invalid input.
func Validation(message string, cause error) *Error {
	return New(http.StatusBadRequest, CodeValidation, message, cause)
}

// NotFound is a 404.
func NotFound(message string, cause error) *Error {
	return New(http.StatusNotFound, CodeNotFound, message, cause)
}

// Timeout is a 504 for requests that ran past their deadline.
func Timeout(cause error) *Error {
	return New(http.StatusGatewayTimeout, CodeTimeout, "Request timed out", cause)
}

// TooManyRequests is a 429 emitted by the rate limiter.
func TooManyRequests() *Error {
	return New(http.StatusTooManyRequests, CodeTooMany, "Too many requests. Please try again later.", nil)
}

// Internal is a 500 whose message never includes the cause.
func Internal(cause error) *Error {
	return New(http.StatusInternalServerError, CodeInternal, "Internal server error", cause)
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *Error) Unwrap() error { return e.cause }

// Message is safe to show to clients.
func (e *Error) Message() string { return e.message }

func (e *Error) StatusCode() int { return e.status }

func (e *Error) Code() Code { return e.code }

// WithFields returns a copy carrying per-field messages.
func (e *Error) WithFields(fields map[string]string) *Error {
	out := *e
	out.fields = fields
	return &out
}

func (e *Error) Fields() map[string]string { return e.fields }

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
