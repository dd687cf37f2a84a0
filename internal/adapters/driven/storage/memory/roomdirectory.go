package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-chat/internal/core/ports/driven"
)

// Ensure RoomDirectory implements the interfaces.
var (
	_ driven.RoomDirectory = (*RoomDirectory)(nil)
	_ driven.RoomJoiner    = (*RoomDirectory)(nil)
)

// RoomDirectory is an in-memory implementation of driven.RoomDirectory.
type RoomDirectory struct {
	mu    sync.RWMutex
	rooms map[string]bool
}

// NewRoomDirectory creates a directory with the given joined rooms.
func NewRoomDirectory(roomIDs ...string) *RoomDirectory {
	d := &RoomDirectory{rooms: make(map[string]bool)}
	for _, id := range roomIDs {
		d.rooms[id] = true
	}
	return d
}

// Join marks a room as joined.
func (d *RoomDirectory) Join(_ context.Context, roomID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rooms[roomID] = true
	return nil
}

// Leave marks a room as no longer joined.
func (d *RoomDirectory) Leave(_ context.Context, roomID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.rooms, roomID)
	return nil
}

// JoinedRooms returns the joined room IDs in sorted order.
func (d *RoomDirectory) JoinedRooms(_ context.Context) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.rooms))
	for id := range d.rooms {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}
