package events

import (
	"context"
	"sync"
)

// subscriberBuffer bounds the per-subscriber channel. A subscriber that falls
// this far behind loses events rather than blocking publishers; consumers
// re-fetch on every event, so a dropped event only delays the refresh until
// the next one.
const subscriberBuffer = 16

// Hub is the in-process fan-out of change events, keyed by owner id. Each
// subscription is a scoped resource: acquired on Subscribe, released through
// the returned cancel function.
type Hub struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]chan ChangeEvent // ownerID -> subscriber id -> channel
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int]chan ChangeEvent)}
}

// Subscribe registers for the owner's change events. The returned cancel
// function closes the channel and must be called on teardown.
func (h *Hub) Subscribe(ownerID string) (<-chan ChangeEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	ch := make(chan ChangeEvent, subscriberBuffer)
	if h.subs[ownerID] == nil {
		h.subs[ownerID] = make(map[int]chan ChangeEvent)
	}
	h.subs[ownerID][id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[ownerID][id]; ok {
			delete(h.subs[ownerID], id)
			if len(h.subs[ownerID]) == 0 {
				delete(h.subs, ownerID)
			}
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber of its owner. Delivery never
// blocks; events for owners without subscribers are discarded.
func (h *Hub) Publish(_ context.Context, e ChangeEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs[e.OwnerID] {
		select {
		case ch <- e:
		default:
			// Slow subscriber, skip. It will catch up on the next event.
		}
	}
	return nil
}

// BridgeTo returns a Consume handler that republishes broker events into the
// hub, so SSE subscribers also see changes that originated elsewhere, like
// the worker's notifications.
func BridgeTo(h *Hub) func(ChangeEvent) error {
	return func(e ChangeEvent) error {
		return h.Publish(context.Background(), e)
	}
}
