// Package events provides types and interfaces for an event-driven architecture.
//
// Services emit events after a state change without knowing which handlers
// will process them. The twit service uses it to announce image references
// that are no longer used, so storage cleanup stays out of the request path
// of the domain logic.
//
// The primary components are:
// - Event: a typed notification with a JSON payload
// - EventHandler: interface for components that can handle events
// - EventEmitter: interface for components that can emit events
package events
