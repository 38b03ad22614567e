// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and repositories
// (defined in internal/store) to fulfill application features.
//
// Key components:
//
// 1. Service Interfaces:
//   - Define the task operations available to the delivery mechanisms
//
// 2. Use Case Implementations:
//   - Coordinate repositories and domain entities
//   - Apply transactional boundaries to read-modify-write cycles
//   - Emit lifecycle events after successful mutations
//
// 3. Error Handling:
//   - Translate store-level errors to service-level sentinel errors
//   - Provide meaningful error context for API responses
//
// The service layer depends on domain entities and repository interfaces (from
// store), but never on specific infrastructure implementations, maintaining
// the Dependency Inversion Principle of clean architecture.
package service
