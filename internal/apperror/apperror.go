// Package apperror is the error taxonomy handed to the HTTP layer. Every
// Error carries the status code and the client-safe message; the wrapped
// cause is for logs and errors.Is only.
package apperror

import (
	"errors"
	"net/http"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Status  int
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(status int, message string, cause error) *Error {
	return &Error{Status: status, Message: message, Err: cause}
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message, nil)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, message, nil)
}

func Conflict(message string) *Error {
	return New(http.StatusConflict, message, nil)
}

func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message, nil)
}

func Internal(message string, cause error) *Error {
	return New(http.StatusInternalServerError, message, cause)
}

// As reports whether err is (or wraps) an *Error.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
