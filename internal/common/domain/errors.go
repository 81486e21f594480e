package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used to classify domain failures.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrExternal   = errors.New("external service failure")
)

// DomainError carries a classification sentinel and a human-readable message.
type DomainError struct {
	Err     error
	Message string
	Cause   error
}

func (e *DomainError) Error() string {
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

// Is reports whether target matches the classification sentinel.
func (e *DomainError) Is(target error) bool {
	return e.Err == target
}

// Unwrap exposes the underlying cause, if any.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// NewNotFoundError creates an error for a missing entity.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s with id %s not found", entity, id),
	}
}

// NewValidationError creates an error for rejected input.
func NewValidationError(message string) *DomainError {
	return &DomainError{Err: ErrValidation, Message: message}
}

// NewExternalError wraps a failure of an outbound collaborator.
func NewExternalError(message string, cause error) *DomainError {
	return &DomainError{Err: ErrExternal, Message: message, Cause: cause}
}
