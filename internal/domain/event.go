package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// EventKind discriminates change events pushed to subscribers.
type EventKind string

const (
	EventInsert EventKind = "insert"
	EventDelete EventKind = "delete"
)

var ErrMalformedEvent = errors.New("malformed change event")

// ChangeEvent is one insert or delete notification for a single bookmark.
// Events are delivered at-least-once and unordered across distinct records;
// consumers must deduplicate by ID.
type ChangeEvent struct {
	Kind    EventKind `json:"kind"`
	OwnerID string    `json:"owner_id"`

	// Bookmark is set for insert events only.
	Bookmark *Bookmark `json:"bookmark,omitempty"`

	// ID is the record identifier, set for both kinds.
	ID string `json:"id"`
}

// NewInsertEvent builds the change event published after a successful create.
func NewInsertEvent(b *Bookmark) ChangeEvent {
	return ChangeEvent{
		Kind:     EventInsert,
		OwnerID:  b.OwnerID,
		Bookmark: b,
		ID:       b.ID,
	}
}

// NewDeleteEvent builds the change event published after a successful delete.
func NewDeleteEvent(ownerID, id string) ChangeEvent {
	return ChangeEvent{
		Kind:    EventDelete,
		OwnerID: ownerID,
		ID:      id,
	}
}

// DecodeEvent parses a wire payload into a ChangeEvent and rejects anything
// that does not carry the minimum shape. Subscribers drop malformed payloads
// instead of crashing the stream.
func DecodeEvent(payload []byte) (ChangeEvent, error) {
	var ev ChangeEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return ChangeEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	switch ev.Kind {
	case EventInsert:
		if ev.Bookmark == nil || ev.Bookmark.ID == "" {
			return ChangeEvent{}, fmt.Errorf("%w: insert without bookmark", ErrMalformedEvent)
		}
		if ev.ID == "" {
			ev.ID = ev.Bookmark.ID
		}
	case EventDelete:
		if ev.ID == "" {
			return ChangeEvent{}, fmt.Errorf("%w: delete without id", ErrMalformedEvent)
		}
	default:
		return ChangeEvent{}, fmt.Errorf("%w: unknown kind %q", ErrMalformedEvent, ev.Kind)
	}

	if ev.OwnerID == "" {
		return ChangeEvent{}, fmt.Errorf("%w: missing owner", ErrMalformedEvent)
	}

	return ev, nil
}

// Encode serializes the event for the pub/sub channel and the websocket.
func (ev ChangeEvent) Encode() ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to encode change event: %w", err)
	}
	return data, nil
}
