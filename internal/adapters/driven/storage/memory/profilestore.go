package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driven"
)

// Ensure ProfileStore implements the interfaces.
var (
	_ driven.ProfileStore  = (*ProfileStore)(nil)
	_ driven.ProfileWriter = (*ProfileStore)(nil)
)

type profileKey struct {
	userID string
	roomID string
}

// ProfileStore is an in-memory implementation of driven.ProfileStore.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[profileKey]domain.Profile
}

// NewProfileStore creates a new in-memory profile store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		profiles: make(map[profileKey]domain.Profile),
	}
}

// SaveProfile stores the profile of a user in a room.
func (s *ProfileStore) SaveProfile(_ context.Context, roomID string, profile domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profileKey{userID: profile.UserID, roomID: roomID}] = profile
	return nil
}

// GetProfile returns the profile of userID in roomID.
func (s *ProfileStore) GetProfile(_ context.Context, userID, roomID string) (*domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[profileKey{userID: userID, roomID: roomID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}
