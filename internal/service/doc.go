// Package service implements the reading-list use cases: registering and
// authenticating users, and managing a user's list items joined with the
// books they reference. Services depend only on store interfaces.
package service
