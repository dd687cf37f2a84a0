package driven

import (
	"context"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

// ProfileWriter records member profiles seen in room state.
type ProfileWriter interface {
	// SaveProfile stores or replaces the profile of a user in a room.
	SaveProfile(ctx context.Context, roomID string, profile domain.Profile) error
}

// RoomJoiner records the rooms the session has joined.
type RoomJoiner interface {
	// Join marks a room as joined. Joining twice is a no-op.
	Join(ctx context.Context, roomID string) error
}
