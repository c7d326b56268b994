package store

import (
	"context"
	"sync"
	"time"
)

// Event reports a successful save.
type Event struct {
	UserID string
	Fields Field
	At     time.Time
}

// Hub fans events out to subscribers. It is owned by whoever wires the
// application together; there is no package-level registry.
type Hub struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	next   int
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Event)}
}

// Subscribe returns a channel of events and a cancel func that closes it.
func (h *Hub) Subscribe(buffer int) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, buffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	id := h.next
	h.next++
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
}

// Publish never blocks; a subscriber whose buffer is full misses the event.
func (h *Hub) Publish(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Close closes every subscriber channel. Later subscriptions get a closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

// Observed wraps a Backend and publishes an Event after every successful save.
type Observed struct {
	Backend
	hub *Hub
	now func() time.Time
}

func NewObserved(b Backend, hub *Hub) *Observed {
	return &Observed{Backend: b, hub: hub, now: time.Now}
}

func (o *Observed) Save(ctx context.Context, userID string, snap Snapshot, fields Field) error {
	if err := o.Backend.Save(ctx, userID, snap, fields); err != nil {
		return err
	}
	o.hub.Publish(Event{UserID: userID, Fields: fields, At: o.now()})
	return nil
}
