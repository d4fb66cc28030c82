// Package errors defines the error taxonomy shared by the task and vocabulary stores.
// ValidationError rejects caller input before any statement runs, ConflictError reports a
// uniqueness violation, and StoreError wraps every other storage failure.
package errors

import (
	"errors"
	"fmt"
)

// ErrNotFound is the soft not-found signal for lookups by identity.
var ErrNotFound = errors.New("not found")

// ValidationError is returned when a caller-supplied value is outside its domain.
type ValidationError struct {
	Field   string // The field or parameter that failed
	Value   string // The rejected value (optional)
	Message string // What is wrong with it
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s '%s': %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ConflictError is returned when a write violates a uniqueness constraint.
type ConflictError struct {
	Entity string
	Key    string
	Cause  error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s '%s' already exists", e.Entity, e.Key)
}

func (e *ConflictError) Unwrap() error {
	return e.Cause
}

// NewConflictError creates a new ConflictError.
func NewConflictError(entity, key string, cause error) *ConflictError {
	return &ConflictError{
		Entity: entity,
		Key:    key,
		Cause:  cause,
	}
}

// StoreError wraps an underlying storage failure with the operation that hit it.
type StoreError struct {
	Op    string
	Cause error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// NewStoreError creates a new StoreError. A nil cause yields nil.
func NewStoreError(op string, cause error) error {
	if cause == nil {
		return nil
	}
	return &StoreError{
		Op:    op,
		Cause: cause,
	}
}

// IsValidation checks if an error is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict checks if an error is a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsStore checks if an error is a StoreError.
func IsStore(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// IsNotFound checks if an error carries ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// AsValidation extracts a ValidationError from an error chain.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

// AsConflict extracts a ConflictError from an error chain.
func AsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	ok := errors.As(err, &ce)
	return ce, ok
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted additional context.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}
