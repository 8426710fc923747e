package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/taskhub/internal/events"
)

// RecordingEmitter implements events.Emitter and keeps every emitted event.
type RecordingEmitter struct {
	mu     sync.Mutex
	events []events.Event

	// Err is returned from every Emit call after recording.
	Err error
}

var _ events.Emitter = (*RecordingEmitter)(nil)

// Emit implements events.Emitter.
func (r *RecordingEmitter) Emit(_ context.Context, evs ...events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evs...)
	return r.Err
}

// Events returns a copy of the recorded events.
func (r *RecordingEmitter) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

// Reset forgets all recorded events.
func (r *RecordingEmitter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
