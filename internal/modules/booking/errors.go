// README: Dispatch error taxonomy.
package booking

import (
	"errors"
	"fmt"

	"limo/internal/types"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidTransition  = errors.New("invalid state transition")
	ErrPreconditionFailed = errors.New("precondition failed")
)

// ValidationError describes a malformed or incomplete request. Its message is safe to show the requester.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move booking from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

func notFound(resource string, id types.ID) error {
	return fmt.Errorf("%s %s: %w", resource, string(id), ErrNotFound)
}

func preconditionFailed(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrPreconditionFailed)
}
