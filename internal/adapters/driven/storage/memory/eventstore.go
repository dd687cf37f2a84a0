package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driven"
)

// Ensure EventStore implements the interface.
var _ driven.EventStore = (*EventStore)(nil)

// EventStore is an in-memory implementation of driven.EventStore.
// Each room timeline is kept sorted by timestamp, then event ID.
type EventStore struct {
	mu        sync.RWMutex
	events    map[string]domain.Event
	timelines map[string][]string // roomID -> sorted event IDs
}

// NewEventStore creates a new in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{
		events:    make(map[string]domain.Event),
		timelines: make(map[string][]string),
	}
}

// SaveEvent stores or replaces an event.
func (s *EventStore) SaveEvent(_ context.Context, event domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.events[event.ID]; ok {
		s.unlink(old)
	}
	s.events[event.ID] = event

	timeline := s.timelines[event.RoomID]
	i := sort.Search(len(timeline), func(i int) bool {
		return !s.before(s.events[timeline[i]], event)
	})
	timeline = append(timeline, "")
	copy(timeline[i+1:], timeline[i:])
	timeline[i] = event.ID
	s.timelines[event.RoomID] = timeline
	return nil
}

// GetEvent retrieves an event by ID.
func (s *EventStore) GetEvent(_ context.Context, id string) (*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &ev, nil
}

// EventsBefore returns up to count events preceding eventID, oldest first.
func (s *EventStore) EventsBefore(_ context.Context, eventID, roomID string, count int) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, err := s.position(eventID, roomID)
	if err != nil {
		return nil, err
	}
	start := pos - count
	if start < 0 {
		start = 0
	}
	return s.slice(roomID, start, pos), nil
}

// EventsAfter returns up to count events following eventID, oldest first.
func (s *EventStore) EventsAfter(_ context.Context, eventID, roomID string, count int) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, err := s.position(eventID, roomID)
	if err != nil {
		return nil, err
	}
	end := pos + 1 + count
	if n := len(s.timelines[roomID]); end > n {
		end = n
	}
	return s.slice(roomID, pos+1, end), nil
}

// ListRoomEvents returns every event of a room in timeline order.
func (s *EventStore) ListRoomEvents(_ context.Context, roomID string) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slice(roomID, 0, len(s.timelines[roomID])), nil
}

// ListPending returns events of the given rooms still waiting for decryption.
func (s *EventStore) ListPending(_ context.Context, roomIDs []string) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending []domain.Event
	for _, roomID := range roomIDs {
		for _, id := range s.timelines[roomID] {
			if ev := s.events[id]; ev.Pending() {
				pending = append(pending, ev)
			}
		}
	}
	return pending, nil
}

// position finds eventID in the room timeline (caller must hold the lock).
func (s *EventStore) position(eventID, roomID string) (int, error) {
	ev, ok := s.events[eventID]
	if !ok || ev.RoomID != roomID {
		return 0, domain.ErrNotFound
	}
	timeline := s.timelines[roomID]
	i := sort.Search(len(timeline), func(i int) bool {
		return !s.before(s.events[timeline[i]], ev)
	})
	if i >= len(timeline) || timeline[i] != eventID {
		return 0, domain.ErrNotFound
	}
	return i, nil
}

func (s *EventStore) slice(roomID string, start, end int) []domain.Event {
	timeline := s.timelines[roomID]
	out := make([]domain.Event, 0, end-start)
	for _, id := range timeline[start:end] {
		out = append(out, s.events[id])
	}
	return out
}

// unlink removes an event from its room timeline (caller must hold the lock).
func (s *EventStore) unlink(ev domain.Event) {
	timeline := s.timelines[ev.RoomID]
	for i, id := range timeline {
		if id == ev.ID {
			s.timelines[ev.RoomID] = append(timeline[:i], timeline[i+1:]...)
			return
		}
	}
}

// before reports whether a precedes b in timeline order.
func (s *EventStore) before(a, b domain.Event) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	return a.ID < b.ID
}
