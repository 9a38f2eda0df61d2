// Package auth issues and verifies the bearer tokens that identify API
// callers, and hashes and compares user passwords.
package auth
