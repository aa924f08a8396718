package testhelpers

import (
	"context"
	"sync"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/events"
)

// RecordingEmitter captures emitted events synchronously
type RecordingEmitter struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *RecordingEmitter) Emit(_ context.Context, event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of everything emitted so far
func (r *RecordingEmitter) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfType returns emitted events of one type
func (r *RecordingEmitter) OfType(eventType events.EventType) []events.Event {
	var out []events.Event
	for _, e := range r.Events() {
		if e.Type() == eventType {
			out = append(out, e)
		}
	}
	return out
}

// Reset forgets recorded events
func (r *RecordingEmitter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
