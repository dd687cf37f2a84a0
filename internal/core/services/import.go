package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-chat/internal/logger"
)

// Ensure ImportService implements the interface.
var _ driving.ImportService = (*ImportService)(nil)

// ImportService loads room snapshots through the timeline service.
type ImportService struct {
	timeline driving.TimelineService
	events   driven.EventStore
	profiles driven.ProfileWriter
	rooms    driven.RoomJoiner
}

// NewImportService creates a new import service.
func NewImportService(
	timeline driving.TimelineService,
	events driven.EventStore,
	profiles driven.ProfileWriter,
	rooms driven.RoomJoiner,
) *ImportService {
	return &ImportService{
		timeline: timeline,
		events:   events,
		profiles: profiles,
		rooms:    rooms,
	}
}

// Import joins each room, records its members and adds its events.
func (s *ImportService) Import(ctx context.Context, rooms []domain.RoomSnapshot) (*domain.ImportStats, error) {
	logger.Section("Import")
	stats := &domain.ImportStats{}

	for _, room := range rooms {
		if room.RoomID == "" {
			return stats, fmt.Errorf("%w: room without id", domain.ErrInvalidInput)
		}
		if err := s.rooms.Join(ctx, room.RoomID); err != nil {
			return stats, fmt.Errorf("joining %s: %w", room.RoomID, err)
		}
		stats.Rooms++

		for _, member := range room.Members {
			if member.UserID == "" {
				continue
			}
			if err := s.profiles.SaveProfile(ctx, room.RoomID, member); err != nil {
				return stats, fmt.Errorf("saving profile %s: %w", member.UserID, err)
			}
			stats.Profiles++
		}

		for _, event := range room.Events {
			if event.ID == "" {
				event.ID = "$" + uuid.New().String()
			}
			if event.RoomID == "" {
				event.RoomID = room.RoomID
			}
			if err := s.timeline.AddEvent(ctx, event); err != nil {
				return stats, fmt.Errorf("adding event %s: %w", event.ID, err)
			}
			stats.Events++
			s.count(ctx, event, stats)
		}

		logger.Debug("Room %s: %d members, %d events", room.RoomID, len(room.Members), len(room.Events))
	}

	return stats, nil
}

// count classifies an imported event. Encrypted events may have been
// decrypted on arrival, so their stored state decides.
func (s *ImportService) count(ctx context.Context, event domain.Event, stats *domain.ImportStats) {
	switch {
	case event.Redacted:
		stats.Redacted++
	case event.Searchable():
		stats.Searchable++
	case event.Pending():
		stored, err := s.events.GetEvent(ctx, event.ID)
		if err == nil && stored.Searchable() {
			stats.Searchable++
			return
		}
		stats.Pending++
	}
}
