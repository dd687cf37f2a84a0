package driving

import (
	"context"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

// ImportService loads room snapshots into the engine.
type ImportService interface {
	// Import joins each room, records its member profiles and feeds its
	// events through the timeline. Events without an ID are assigned one.
	Import(ctx context.Context, rooms []domain.RoomSnapshot) (*domain.ImportStats, error)
}
