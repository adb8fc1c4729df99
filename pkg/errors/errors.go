package apperrors

import (
	"errors"
)

// Common errors
var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrRateLimited   = errors.New("rate limited")
	ErrAlreadyExists = errors.New("already exists")
)

// Error carries a caller-facing message on top of one of the common errors.
// errors.Is matches against the wrapped kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// New returns an error of the given kind with a caller-facing message.
func New(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

func InvalidInput(message string) error {
	return New(ErrInvalidInput, message)
}

func NotFound(message string) error {
	return New(ErrNotFound, message)
}

func Forbidden(message string) error {
	return New(ErrForbidden, message)
}

func Unauthorized(message string) error {
	return New(ErrUnauthorized, message)
}
