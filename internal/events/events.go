package events

import (
	"sync"
	"time"

	"turnero/internal/model"
)

// Domain event types published by the scheduling core.
const (
	TypeReservationCreated       = "reservation.created"
	TypeReservationStatusChanged = "reservation.status_changed"
	TypeQueueChanged             = "queue.changed"
)

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   any
	CreatedAt time.Time
}

// Handler reacts to an event.
type Handler func(event Event)

// Bus provides in-process pub/sub for domain events.
type Bus struct {
	subscribers map[string][]Handler
	mu          sync.RWMutex
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[string][]Handler)}
}

// Subscribe registers a handler for a given event type.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		handler(event)
	}
}

// ReservationChange is the payload of reservation events.
type ReservationChange struct {
	ReservationID string
	BarberID      string
	ClientID      string
	From          string
	To            string
}

// QueueChange is the payload of queue.changed events. Waiting carries the
// fully renumbered waiting set observed inside the queue guard.
type QueueChange struct {
	Reason  string // join, leave, advance, finish, promote
	Waiting []model.QueueEntry
}
