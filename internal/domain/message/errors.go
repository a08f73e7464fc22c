package message

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("message not found")
	ErrValidation = errors.New("validation error")
	ErrNotSender  = errors.New("only the sender can delete a message")
)

// FieldError is a validation failure tied to a specific field. It unwraps to
// ErrValidation so callers can match the whole class.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrValidation }
