package driven

import (
	"context"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

// EventStore persists room timelines.
// Events within a room are ordered by timestamp, then by event ID.
type EventStore interface {
	// SaveEvent stores or replaces an event.
	SaveEvent(ctx context.Context, event domain.Event) error

	// GetEvent retrieves an event by ID.
	// Returns domain.ErrNotFound if the event does not exist.
	GetEvent(ctx context.Context, id string) (*domain.Event, error)

	// EventsBefore returns up to count events immediately preceding eventID
	// in roomID, oldest first.
	EventsBefore(ctx context.Context, eventID, roomID string, count int) ([]domain.Event, error)

	// EventsAfter returns up to count events immediately following eventID
	// in roomID, oldest first.
	EventsAfter(ctx context.Context, eventID, roomID string, count int) ([]domain.Event, error)

	// ListRoomEvents returns every event of a room in timeline order.
	ListRoomEvents(ctx context.Context, roomID string) ([]domain.Event, error)

	// ListPending returns events of the given rooms still waiting for decryption.
	ListPending(ctx context.Context, roomIDs []string) ([]domain.Event, error)
}
