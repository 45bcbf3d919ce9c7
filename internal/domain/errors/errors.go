package errors

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyExists        = errors.New("already exists")
	ErrNotFound             = errors.New("not found")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrPreconditionFailed   = errors.New("precondition failed")
	ErrAlreadyCancelled     = errors.New("already cancelled")
	ErrQuoteAlreadyAccepted = errors.New("quote already accepted")
	ErrDivideByZero         = errors.New("divide by zero")
	ErrConcurrentTransition = errors.New("transition already in progress")
)

// PreconditionError carries the reason a business rule rejected an operation.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", ErrPreconditionFailed.Error(), e.Reason)
}

func (e *PreconditionError) Unwrap() error {
	return ErrPreconditionFailed
}

// Precondition builds a PreconditionError with a formatted reason.
func Precondition(format string, args ...any) error {
	return &PreconditionError{Reason: fmt.Sprintf(format, args...)}
}

// Reason extracts the precondition reason from err, if any.
func Reason(err error) (string, bool) {
	var pe *PreconditionError
	if errors.As(err, &pe) {
		return pe.Reason, true
	}
	return "", false
}
