package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Emitter delivers events to subscribers
type Emitter interface {
	Emit(ctx context.Context, event Event)
}

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	all      []Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// SubscribeAll adds a handler that receives every event type
func (b *Bus) SubscribeAll(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.all = append(b.all, handler)
}

// Emit publishes an event to all registered handlers. Handlers run
// asynchronously and a panicking handler does not affect the others.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[event.Type()])+len(b.all))
	handlers = append(handlers, b.handlers[event.Type()]...)
	handlers = append(handlers, b.all...)
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event")

	// Handlers outlive the request that raised the event
	ctx = context.WithoutCancel(ctx)

	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds events raised during a compound operation and
// releases them only once the operation has fully succeeded.
type TransactionalBus struct {
	mu      sync.Mutex
	real    Emitter
	pending []Event
}

// NewTransactionalBus creates a pending-event buffer in front of real
func NewTransactionalBus(real Emitter) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// Publish stashes an event until Flush or Discard
func (b *TransactionalBus) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pending = append(b.pending, e)
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Queued event on transactional bus")
}

// Flush emits pending events in publish order and clears the buffer
func (b *TransactionalBus) Flush(ctx context.Context) {
	b.mu.Lock()
	pending := b.pending
	b.pending = nil
	b.mu.Unlock()

	for _, e := range pending {
		b.real.Emit(ctx, e)
	}
}

// Discard drops pending events
func (b *TransactionalBus) Discard() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.pending) > 0 {
		log.WithField("discarded", len(b.pending)).Debug("Discarded pending events")
	}
	b.pending = nil
}

// Pending returns the number of queued events
func (b *TransactionalBus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}
