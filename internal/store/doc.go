// Package store defines interfaces for task persistence operations.
// These interfaces abstract the underlying storage mechanism from the
// application's core logic, so the validation and lifecycle rules stay
// independent of any specific database technology.
package store
