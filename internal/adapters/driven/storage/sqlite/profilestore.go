package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driven"
)

// ProfileStore implements driven.ProfileStore on the profiles table.
type ProfileStore struct {
	store *Store
}

var (
	_ driven.ProfileStore  = (*ProfileStore)(nil)
	_ driven.ProfileWriter = (*ProfileStore)(nil)
)

// SaveProfile stores or updates the profile of a user in a room.
func (s *ProfileStore) SaveProfile(ctx context.Context, roomID string, profile domain.Profile) error {
	if profile.UserID == "" || roomID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, room_id, display_name, avatar_url)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, room_id) DO UPDATE SET
			display_name = excluded.display_name,
			avatar_url = excluded.avatar_url
	`, profile.UserID, roomID, profile.DisplayName, profile.AvatarURL)
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

// GetProfile returns the profile of userID in roomID.
func (s *ProfileStore) GetProfile(ctx context.Context, userID, roomID string) (*domain.Profile, error) {
	profile := domain.Profile{UserID: userID}
	err := s.store.db.QueryRowContext(ctx, `
		SELECT display_name, avatar_url FROM profiles
		WHERE user_id = ? AND room_id = ?
	`, userID, roomID).Scan(&profile.DisplayName, &profile.AvatarURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	return &profile, nil
}
