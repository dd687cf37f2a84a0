package sqlite

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driven"
)

// RoomDirectory implements driven.RoomDirectory on the joined_rooms table.
type RoomDirectory struct {
	store *Store
}

var (
	_ driven.RoomDirectory = (*RoomDirectory)(nil)
	_ driven.RoomJoiner    = (*RoomDirectory)(nil)
)

// Join marks a room as joined. Joining twice is a no-op.
func (d *RoomDirectory) Join(ctx context.Context, roomID string) error {
	if roomID == "" {
		return domain.ErrInvalidInput
	}
	if _, err := d.store.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO joined_rooms (room_id) VALUES (?)`, roomID); err != nil {
		return fmt.Errorf("joining room: %w", err)
	}
	return nil
}

// Leave removes a room from the directory.
func (d *RoomDirectory) Leave(ctx context.Context, roomID string) error {
	if _, err := d.store.db.ExecContext(ctx,
		`DELETE FROM joined_rooms WHERE room_id = ?`, roomID); err != nil {
		return fmt.Errorf("leaving room: %w", err)
	}
	return nil
}

// JoinedRooms returns the joined room IDs in sorted order.
func (d *RoomDirectory) JoinedRooms(ctx context.Context) ([]string, error) {
	rows, err := d.store.db.QueryContext(ctx, `SELECT room_id FROM joined_rooms ORDER BY room_id`)
	if err != nil {
		return nil, fmt.Errorf("querying joined rooms: %w", err)
	}
	defer rows.Close()

	var rooms []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning room: %w", err)
		}
		rooms = append(rooms, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rooms: %w", err)
	}
	return rooms, nil
}
