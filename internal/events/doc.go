// Package events carries notification events from the operation that
// produced them to the handlers that deliver them.
//
// Services plan events while mutating state and hand them to an Emitter
// only after the write has committed. InMemoryEmitter runs handlers inline;
// AsyncEmitter queues events for a pool of background workers.
package events
