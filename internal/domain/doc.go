// Package domain contains the core business entities of the reading list:
// users, books and the list items that tie them together, along with the
// password policy and the typed errors the API translates into responses.
// It has no dependencies on storage or transport.
package domain
