// Package authevents is the in-process channel the request pipeline uses to
// announce authentication failures. Listeners such as route guards subscribe
// at startup and decide for themselves how to react.
package authevents

import (
	"sync"

	"github.com/google/uuid"
)

// Event describes a detected authentication failure.
type Event struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// Listener receives events synchronously on the emitting goroutine.
type Listener func(Event)

// Broadcaster fans events out to the listeners registered at emit time.
// Emitting with no listeners is a no-op.
type Broadcaster struct {
	mu        sync.RWMutex
	listeners map[uuid.UUID]Listener
	order     []uuid.UUID
}

func New() *Broadcaster {
	return &Broadcaster{
		listeners: make(map[uuid.UUID]Listener),
	}
}

// Subscribe registers fn and returns the id to pass to Unsubscribe.
func (b *Broadcaster) Subscribe(fn Listener) uuid.UUID {
	id := uuid.New()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[id] = fn
	b.order = append(b.order, id)
	return id
}

// Unsubscribe removes a listener. Unknown ids are ignored.
func (b *Broadcaster) Unsubscribe(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.listeners[id]; !ok {
		return
	}
	delete(b.listeners, id)
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// Emit delivers an event to every current listener in subscription order.
// Listeners may subscribe or unsubscribe from inside a callback.
func (b *Broadcaster) Emit(message string, status int) {
	if b == nil {
		return
	}

	b.mu.RLock()
	snapshot := make([]Listener, 0, len(b.order))
	for _, id := range b.order {
		snapshot = append(snapshot, b.listeners[id])
	}
	b.mu.RUnlock()

	ev := Event{Message: message, Status: status}
	for _, fn := range snapshot {
		fn(ev)
	}
}

// Len returns the number of registered listeners.
func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}
