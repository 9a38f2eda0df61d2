package mocks

import (
	"errors"

	"github.com/phrazzld/bookshelf-api/internal/service/auth"
)

// ErrPasswordMismatch is returned by MockPasswordVerifier when ShouldSucceed is false.
var ErrPasswordMismatch = errors.New("password mismatch")

// MockPasswordVerifier implements auth.PasswordHasher and auth.PasswordVerifier.
// Hash prefixes the password with "hashed:"; Compare succeeds when
// ShouldSucceed is set or the hash matches that scheme.
type MockPasswordVerifier struct {
	ShouldSucceed bool

	HashFn    func(password string) (string, error)
	CompareFn func(hashedPassword, password string) error

	CompareCallCount int
}

var (
	_ auth.PasswordHasher   = (*MockPasswordVerifier)(nil)
	_ auth.PasswordVerifier = (*MockPasswordVerifier)(nil)
)

// Hash implements auth.PasswordHasher.
func (m *MockPasswordVerifier) Hash(password string) (string, error) {
	if m.HashFn != nil {
		return m.HashFn(password)
	}
	return "hashed:" + password, nil
}

// Compare implements auth.PasswordVerifier.
func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	m.CompareCallCount++
	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	if m.ShouldSucceed || hashedPassword == "hashed:"+password {
		return nil
	}
	return ErrPasswordMismatch
}
