// Package events provides types and interfaces for task lifecycle events.
//
// The service layer emits a TaskEvent after every successful mutation
// (create, update, delete) without knowing which handlers will process it.
// Subscribers such as the websocket feed register an EventHandler with the
// emitter to receive those events, keeping delivery concerns decoupled from
// the CRUD path.
package events
