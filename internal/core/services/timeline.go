package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-chat/internal/logger"
)

// Ensure TimelineService implements the interface.
var _ driving.TimelineService = (*TimelineService)(nil)

// TimelineService keeps the event store and the search index in step.
//
// Mutations are serialised so a store write and its index update are
// never interleaved with another mutation of the same event.
type TimelineService struct {
	events    driven.EventStore
	index     driven.SearchIndex
	decryptor driven.Decryptor
	rooms     driven.RoomDirectory

	mu sync.Mutex
}

// NewTimelineService creates a new timeline service.
// The decryptor parameter is optional (can be nil).
func NewTimelineService(
	events driven.EventStore,
	index driven.SearchIndex,
	decryptor driven.Decryptor,
	rooms driven.RoomDirectory,
) *TimelineService {
	return &TimelineService{
		events:    events,
		index:     index,
		decryptor: decryptor,
		rooms:     rooms,
	}
}

// AddEvent stores a timeline event and indexes it when its body is known.
// Encrypted events get one decryption attempt on arrival.
func (s *TimelineService) AddEvent(ctx context.Context, event domain.Event) error {
	if event.ID == "" || event.RoomID == "" {
		return fmt.Errorf("%w: event needs an id and a room", domain.ErrInvalidInput)
	}
	if !domain.ValidTimestamp(event.Timestamp) {
		return fmt.Errorf("%w: timestamp %s of %s out of range",
			domain.ErrInvalidInput, event.Timestamp.Format(time.RFC3339), event.ID)
	}

	if event.Redacted {
		event = event.Redact()
	} else if event.Pending() {
		if body, ok := s.tryDecrypt(ctx, event); ok {
			event = event.WithBody(body)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(ctx, event)
}

// OnDecrypted records a body delivered by the decryption collaborator.
// Bodies for redacted events are ignored.
func (s *TimelineService) OnDecrypted(ctx context.Context, eventID, body string) error {
	if body == "" {
		return fmt.Errorf("%w: empty decrypted body for %s", domain.ErrInvalidInput, eventID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("loading event %s: %w", eventID, err)
	}
	if event.Redacted {
		logger.Debug("Ignoring decrypted body of redacted event %s", eventID)
		return nil
	}
	return s.apply(ctx, event.WithBody(body))
}

// RetryDecryption re-attempts decryption of pending events in roomIDs.
func (s *TimelineService) RetryDecryption(ctx context.Context, roomIDs []string) (int, error) {
	if s.decryptor == nil || len(roomIDs) == 0 {
		return 0, nil
	}

	pending, err := s.events.ListPending(ctx, roomIDs)
	if err != nil {
		return 0, fmt.Errorf("listing pending events: %w", err)
	}

	decrypted := 0
	for _, event := range pending {
		if err := ctx.Err(); err != nil {
			return decrypted, err
		}
		body, ok := s.tryDecrypt(ctx, event)
		if !ok {
			continue
		}
		if err := s.OnDecrypted(ctx, event.ID, body); err != nil {
			return decrypted, err
		}
		decrypted++
	}
	return decrypted, nil
}

// Redact strips an event's content and removes it from the index.
// The tombstone keeps its place in the timeline for context windows.
func (s *TimelineService) Redact(ctx context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("loading event %s: %w", eventID, err)
	}
	return s.apply(ctx, event.Redact())
}

// Rebuild re-indexes every stored event of every joined room and
// returns how many events are searchable afterwards.
func (s *TimelineService) Rebuild(ctx context.Context) (int, error) {
	logger.Section("Index Rebuild")

	roomIDs, err := s.rooms.JoinedRooms(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: joined rooms: %v", domain.ErrCollaboratorUnavailable, err)
	}

	indexed := 0
	for _, roomID := range roomIDs {
		events, err := s.events.ListRoomEvents(ctx, roomID)
		if err != nil {
			return indexed, fmt.Errorf("listing room %s: %w", roomID, err)
		}

		for _, event := range events {
			if err := ctx.Err(); err != nil {
				return indexed, err
			}
			if !event.Pending() && !event.Searchable() {
				continue
			}

			// Only newly decrypted events need writing back to the store.
			s.mu.Lock()
			switch {
			case event.Searchable():
				err = s.index.Index(ctx, event)
			default:
				if body, ok := s.tryDecrypt(ctx, event); ok {
					event = event.WithBody(body)
					err = s.apply(ctx, event)
				}
			}
			s.mu.Unlock()
			if err != nil {
				return indexed, fmt.Errorf("indexing event %s: %w", event.ID, err)
			}
			if event.Searchable() {
				indexed++
			}
		}
		logger.Debug("Room %s: %d events", roomID, len(events))
	}

	logger.Debug("Indexed %d events", indexed)
	return indexed, nil
}

// apply writes event to the store, then brings the index in line with it.
// Both writes run to completion even if ctx is cancelled midway, so the
// store never holds a body the index is missing. Caller must hold s.mu.
func (s *TimelineService) apply(ctx context.Context, event domain.Event) error {
	ctx = context.WithoutCancel(ctx)
	if err := s.events.SaveEvent(ctx, event); err != nil {
		return fmt.Errorf("saving event %s: %w", event.ID, err)
	}

	if event.Searchable() {
		if err := s.index.Index(ctx, event); err != nil {
			return fmt.Errorf("indexing event %s: %w", event.ID, err)
		}
		return nil
	}

	if err := s.index.Remove(ctx, event.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("unindexing event %s: %w", event.ID, err)
	}
	return nil
}

func (s *TimelineService) tryDecrypt(ctx context.Context, event domain.Event) (string, bool) {
	if s.decryptor == nil {
		return "", false
	}
	return s.decryptor.TryDecrypt(ctx, event)
}
