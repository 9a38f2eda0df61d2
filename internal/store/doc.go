// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, so the ownership guard and the list item
// service can run against Postgres, the in-memory store, or a test double.
package store
