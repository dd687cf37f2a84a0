package driven

import (
	"context"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

// Decryptor is the end-to-end encryption collaborator.
type Decryptor interface {
	// TryDecrypt returns the plaintext body of an encrypted event.
	// ok is false when the event cannot be decrypted (yet).
	TryDecrypt(ctx context.Context, event domain.Event) (body string, ok bool)
}

// ProfileStore resolves sender profiles as seen in a room.
type ProfileStore interface {
	// GetProfile returns the profile of userID in roomID.
	// Returns domain.ErrNotFound when no profile is known.
	GetProfile(ctx context.Context, userID, roomID string) (*domain.Profile, error)
}

// RoomDirectory lists the rooms the session has joined.
type RoomDirectory interface {
	// JoinedRooms returns the IDs of all joined rooms.
	JoinedRooms(ctx context.Context) ([]string, error)
}
