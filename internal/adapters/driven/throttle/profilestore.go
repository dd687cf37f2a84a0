package throttle

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driven"
)

// Ensure ProfileStore implements the interface.
var _ driven.ProfileStore = (*ProfileStore)(nil)

// ProfileStore limits the rate of lookups against an inner store.
type ProfileStore struct {
	inner  driven.ProfileStore
	bucket *rate.Limiter
}

// NewProfileStore wraps inner with a token bucket refilled at perSecond
// lookups per second. A non-positive rate disables throttling.
func NewProfileStore(inner driven.ProfileStore, perSecond float64, burst int) *ProfileStore {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &ProfileStore{
		inner:  inner,
		bucket: rate.NewLimiter(limit, burst),
	}
}

// GetProfile waits for a token and delegates to the inner store.
func (s *ProfileStore) GetProfile(ctx context.Context, userID, roomID string) (*domain.Profile, error) {
	if err := s.bucket.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: profile lookup throttled: %v", domain.ErrCollaboratorUnavailable, err)
	}
	return s.inner.GetProfile(ctx, userID, roomID)
}
