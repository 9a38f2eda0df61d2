package domain

import "unicode/utf8"

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// IsPasswordAllowed reports whether password satisfies the registration
// policy: at least MinPasswordLength characters, at least one upper and one
// lower case ASCII letter, a digit, and a character outside [A-Za-z0-9].
func IsPasswordAllowed(password string) bool {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return false
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	// A letter is implied by having both cases.
	return hasUpper && hasLower && hasDigit && hasSymbol
}
