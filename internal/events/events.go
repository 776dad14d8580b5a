// Package events carries record-change notifications: every successful write
// to the record store produces a ChangeEvent that subscribers (the SSE stream,
// the notification worker) consume to trigger a re-fetch-and-recompute cycle.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Collections that emit change events.
const (
	CollectionExpenses      = "expenses"
	CollectionGoals         = "goals"
	CollectionProfiles      = "profiles"
	CollectionNotifications = "notifications"
)

// Operations.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// ChangeEvent describes one mutation of an owner's records. Events carry no
// payload: consumers re-fetch rather than apply incremental updates.
type ChangeEvent struct {
	Collection string    `json:"collection"`
	Op         string    `json:"op"`
	OwnerID    string    `json:"owner_id"`
	RecordID   string    `json:"record_id,omitempty"`
	At         time.Time `json:"at"`
}

// NewChangeEvent stamps an event with the current time.
func NewChangeEvent(collection, op, ownerID, recordID string) ChangeEvent {
	return ChangeEvent{
		Collection: collection,
		Op:         op,
		OwnerID:    ownerID,
		RecordID:   recordID,
		At:         time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e ChangeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ChangeEventFromJSON creates an event from JSON bytes.
func ChangeEventFromJSON(data []byte) (ChangeEvent, error) {
	var e ChangeEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return ChangeEvent{}, err
	}
	return e, nil
}

// Publisher is implemented by every change-event sink.
type Publisher interface {
	Publish(ctx context.Context, e ChangeEvent) error
}

// MultiPublisher fans a change event out to several sinks. The first error is
// returned after every sink has been attempted.
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(ctx context.Context, e ChangeEvent) error {
	var first error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil && first == nil {
			first = err
		}
	}
	return first
}
