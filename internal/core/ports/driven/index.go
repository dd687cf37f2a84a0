package driven

import (
	"context"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

// SearchIndex is an inverted index from body tokens to events, scoped per room.
//
// Mutations are atomic per event: a concurrent Lookup observes an event
// either fully indexed or not at all.
type SearchIndex interface {
	// Index tokenizes the event body and registers the event under each token.
	// Re-indexing an event replaces its previous postings. An event without a
	// searchable body is removed instead.
	Index(ctx context.Context, event domain.Event) error

	// Remove deletes the event from every posting. Unknown IDs are ignored.
	Remove(ctx context.Context, eventID string) error

	// Lookup returns the events containing token, restricted to roomIDs.
	// A prefix token matches every indexed token it is a prefix of.
	// An empty roomIDs slice matches nothing.
	Lookup(ctx context.Context, token domain.Token, roomIDs []string) ([]domain.Posting, error)

	// Close releases resources.
	Close() error
}
