package driving

import (
	"context"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

// TimelineService feeds room timelines into the search engine.
type TimelineService interface {
	// AddEvent stores a timeline event and indexes it when its body is known.
	AddEvent(ctx context.Context, event domain.Event) error

	// OnDecrypted records a body delivered by the decryption collaborator
	// and re-indexes the event.
	OnDecrypted(ctx context.Context, eventID, body string) error

	// RetryDecryption re-attempts decryption of pending events in the given
	// rooms and returns how many became searchable.
	RetryDecryption(ctx context.Context, roomIDs []string) (int, error)

	// Redact strips an event's content and removes it from the index.
	Redact(ctx context.Context, eventID string) error

	// Rebuild re-indexes every stored event of every joined room.
	Rebuild(ctx context.Context) (int, error)
}
