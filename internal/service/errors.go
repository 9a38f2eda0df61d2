package service

import "errors"

// Sentinel errors returned by services, usually wrapped in a
// *domain.ValidationError that carries the client-facing message.
var (
	// ErrInvalidCredentials indicates an unknown username or a wrong password.
	// Unknown usernames and wrong passwords share it.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicateListItem indicates the owner already has a list item for the book.
	ErrDuplicateListItem = errors.New("duplicate list item")
)
