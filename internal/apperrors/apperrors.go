// Package apperrors defines the standardized application error carried from
// services to handlers.
package apperrors

import (
	"fmt"
	"net/http"
)

// AppError pairs an HTTP status code with a client-facing message.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"` // internal error for logging
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// New creates a new AppError.
func New(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// BadRequest creates a 400 error.
func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, message, nil)
}

// NotFound creates a 404 error.
func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message, nil)
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, message, nil)
}

// Forbidden creates a 403 error.
func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, message, nil)
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, "Internal Server Error", err)
}
