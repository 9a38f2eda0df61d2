package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when input fails validation.
	// It is usually wrapped by a ValidationError carrying the client message.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrForbidden is returned when the caller does not own a resource.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError is a client error whose Message is safe to show to callers.
type ValidationError struct {
	Message string
	Err     error
}

// NewValidationError creates a ValidationError with the given client message.
// If err is nil the error wraps ErrValidation.
func NewValidationError(message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{Message: message, Err: err}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NotFoundError reports that no resource of the named kind has the given id.
type NotFoundError struct {
	Resource string
	ID       string
}

// NewNotFoundError creates a NotFoundError for resource id.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("No %s was found with the id of %s", e.Resource, e.ID)
}

// Unwrap returns ErrNotFound.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ForbiddenError reports that a user tried to reach a resource they do not own.
type ForbiddenError struct {
	UserID   string
	Resource string
	ID       string
}

// NewForbiddenError creates a ForbiddenError.
func NewForbiddenError(userID, resource, id string) *ForbiddenError {
	return &ForbiddenError{UserID: userID, Resource: resource, ID: id}
}

// Error implements the error interface.
func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("User with id %s is not authorized to access the %s %s", e.UserID, e.Resource, e.ID)
}

// Unwrap returns ErrForbidden.
func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}
