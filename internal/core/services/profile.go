package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driven"
)

// ProfileEnricher looks up sender profiles for results.
type ProfileEnricher struct {
	profiles driven.ProfileStore
}

// NewProfileEnricher creates an enricher over profiles. A nil store
// yields no profiles.
func NewProfileEnricher(profiles driven.ProfileStore) *ProfileEnricher {
	return &ProfileEnricher{profiles: profiles}
}

// Enrich returns the sender's profile as seen in the event's room.
// An unknown sender is not an error: the profile is simply nil.
func (e *ProfileEnricher) Enrich(ctx context.Context, event domain.Event) (*domain.Profile, error) {
	if e.profiles == nil || event.Sender == "" {
		return nil, nil
	}

	profile, err := e.profiles.GetProfile(ctx, event.Sender, event.RoomID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, nil
	case errors.Is(err, domain.ErrCollaboratorUnavailable):
		return nil, err
	case err != nil:
		return nil, fmt.Errorf("%w: profile of %s: %v", domain.ErrCollaboratorUnavailable, event.Sender, err)
	}
	return profile, nil
}
