package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrNotFound indicates that a requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that the input data is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMalformedInput indicates that a payload could not be parsed at all.
	ErrMalformedInput = errors.New("malformed input")

	// ErrServiceUnavailable indicates that an external dependency is unavailable.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrInternalError indicates an internal server error.
	ErrInternalError = errors.New("internal error")

	// ErrCancelled indicates that an operation was cancelled.
	ErrCancelled = errors.New("cancelled")
)

// ValidationError represents a validation error for a specific field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// FieldErrors aggregates validation errors for several fields of one payload.
type FieldErrors struct {
	Fields map[string]string
}

// Error implements the error interface.
func (e *FieldErrors) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Fields))
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *FieldErrors) Unwrap() error {
	return ErrInvalidInput
}

// NotFoundError provides details about a not found entity.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// MissingReferencesError reports every referenced entity id that does not exist,
// so a caller can fix the whole payload in one round trip.
type MissingReferencesError struct {
	Entity string
	IDs    []int64
}

// Error implements the error interface.
func (e *MissingReferencesError) Error() string {
	return fmt.Sprintf("%s not found: %v", e.Entity, e.IDs)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *MissingReferencesError) Unwrap() error {
	return ErrNotFound
}

// AlreadyExistsError provides details about a duplicate entity.
// Fields names the columns of the violated uniqueness constraint and ID
// identifies the pre-existing record when it is known.
type AlreadyExistsError struct {
	Entity string
	ID     string
	Fields []string
}

// Error implements the error interface.
func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.Entity, e.ID)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *AlreadyExistsError) Unwrap() error {
	return ErrAlreadyExists
}

// MalformedInputError provides details about an unparseable payload.
type MalformedInputError struct {
	Detail string
	Cause  error
}

// Error implements the error interface.
func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input: %s", e.Detail)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *MalformedInputError) Unwrap() error {
	return ErrMalformedInput
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{
		Entity: entity,
		ID:     id,
	}
}

// NewAlreadyExistsError creates a new AlreadyExistsError.
func NewAlreadyExistsError(entity, id string, fields ...string) *AlreadyExistsError {
	return &AlreadyExistsError{
		Entity: entity,
		ID:     id,
		Fields: fields,
	}
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewFieldErrors creates a new FieldErrors.
func NewFieldErrors(fields map[string]string) *FieldErrors {
	return &FieldErrors{Fields: fields}
}

// NewMissingReferencesError creates a new MissingReferencesError.
func NewMissingReferencesError(entity string, ids []int64) *MissingReferencesError {
	return &MissingReferencesError{
		Entity: entity,
		IDs:    ids,
	}
}

// NewMalformedInputError creates a new MalformedInputError.
func NewMalformedInputError(detail string, cause error) *MalformedInputError {
	return &MalformedInputError{
		Detail: detail,
		Cause:  cause,
	}
}
