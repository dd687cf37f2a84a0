package driving

import (
	"context"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

// SearchService provides message search to external actors.
type SearchService interface {
	// Search returns one page of events matching the query.
	//
	// Errors wrapping domain.ErrInvalidQuery, domain.ErrRoomNotFound or
	// domain.ErrInvalidCursor are caused by the query and are not retryable.
	Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchResult, error)
}
