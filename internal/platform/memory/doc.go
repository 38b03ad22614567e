// Package memory provides an in-process implementation of the storage
// interfaces defined in internal/store. It is used by tests and by local
// development setups that run without a database.
package memory
