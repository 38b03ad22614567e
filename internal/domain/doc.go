// Package domain contains the core business entities and domain logic of
// the application: the Task record, its closed status set, and the
// validation rules guarding every mutation. It is independent of any
// specific storage or delivery mechanism.
package domain
