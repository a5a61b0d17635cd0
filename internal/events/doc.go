// Package events carries domain events from the marketplace services to
// interested handlers.
//
// Services emit an Event after their transaction commits. The in-memory
// emitter dispatches synchronously to every registered EventHandler; a failing
// handler never undoes the committed change.
package events
