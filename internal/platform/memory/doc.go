// Package memory provides in-process implementations of the store
// interfaces. They honor the same error contract as the Postgres stores and
// back the memory database driver and router-level tests.
package memory
