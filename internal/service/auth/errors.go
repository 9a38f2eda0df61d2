package auth

import (
	"errors"
	"fmt"
)

// Error codes carried in 401 response bodies.
const (
	CodeCredentialsRequired  = "credentials_required"
	CodeInvalidToken         = "invalid_token"
	CodeCredentialsBadScheme = "credentials_bad_scheme"
)

// Common authentication service errors
var (
	// ErrNoToken indicates a token was expected but not provided.
	ErrNoToken = errors.New("authentication token is missing")

	// ErrInvalidToken indicates the token is malformed, forged, or otherwise unusable.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired. It also matches ErrInvalidToken.
	ErrExpiredToken = fmt.Errorf("%w: token has expired", ErrInvalidToken)

	// ErrBadScheme indicates the Authorization header does not use the Bearer scheme.
	ErrBadScheme = errors.New("authorization header must use the Bearer scheme")
)

// TokenError is returned when a request cannot be authenticated. Code and
// Message are safe to show to the client.
type TokenError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *TokenError) Error() string {
	return e.Message
}

// Unwrap returns the sentinel describing the failure.
func (e *TokenError) Unwrap() error {
	return e.Err
}

// NewTokenError creates a TokenError.
func NewTokenError(code, message string, err error) *TokenError {
	return &TokenError{Code: code, Message: message, Err: err}
}

// MissingTokenError reports a request with no bearer token.
func MissingTokenError() *TokenError {
	return NewTokenError(CodeCredentialsRequired, "No authorization token was found", ErrNoToken)
}

// BadSchemeError reports an Authorization header with a non-Bearer scheme.
func BadSchemeError() *TokenError {
	return NewTokenError(
		CodeCredentialsBadScheme,
		"Format is Authorization: Bearer [token]",
		ErrBadScheme,
	)
}
