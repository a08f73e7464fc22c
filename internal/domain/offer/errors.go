package offer

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("offer not found")
	ErrValidation            = errors.New("validation error")
	ErrNotPoster             = errors.New("only the poster can perform this action")
	ErrNotTaker              = errors.New("only the current taker can perform this action")
	ErrNotRequester          = errors.New("only the original requester can withdraw the request")
	ErrNotEditable           = errors.New("offer can no longer be edited")
	ErrNotInProgress         = errors.New("offer is not in progress")
	ErrNotReopenable         = errors.New("only a cancelled offer can be reopened")
	ErrTakerRequired         = errors.New("taker is required when moving to in_progress")
	ErrCancellationPending   = errors.New("a cancellation request is already pending")
	ErrNoPendingCancellation = errors.New("cancellation request is no longer pending")
	ErrDeleteBlocked         = errors.New("offer with conversations cannot be deleted")
	ErrConflict              = errors.New("offer was modified concurrently, retry")
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
