package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrValidationFailed   = errors.New("validation failed")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrNotFound           = errors.New("not found")
	ErrNothingToExtend    = errors.New("no pending payments to extend")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// TransitionError is returned when a loan cannot move from its current status to the requested one
type TransitionError struct {
	From LoanStatus
	To   LoanStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// ValidationError carries every unmet pre-condition of an operation
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidationFailed, strings.Join(e.Reasons, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// newValidationError returns nil when there is nothing to report
func newValidationError(reasons []string) error {
	if len(reasons) == 0 {
		return nil
	}
	return &ValidationError{Reasons: reasons}
}
