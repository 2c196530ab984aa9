package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error kinds returned by the managers. Compare with errors.Is.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	ErrUnexpected    = errors.New("unexpected error")
)

// Error carries a message that is safe to show to the client. Err holds the
// underlying cause for logs and is never sent over the wire.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Err
}

func validation(msg string) error {
	return &Error{Kind: ErrValidation, Message: msg}
}

func notFound(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func quotaExceeded(msg string) error {
	return &Error{Kind: ErrQuotaExceeded, Message: msg}
}

func unexpected(op string, err error) error {
	return &Error{Kind: ErrUnexpected, Message: "Error interno del servidor", Err: fmt.Errorf("%s, %w", op, err)}
}

// lookupErr turns a failed single row lookup into NotFound or Unexpected
func lookupErr(err error, notFoundMsg, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(notFoundMsg)
	}

	return unexpected(op, err)
}

// Message returns the client facing message of err, or a generic one
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}

	return "Error interno del servidor"
}
