package matrix

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

// Export is the room export file read by the import command.
type Export struct {
	Rooms []RoomExport `json:"rooms"`
}

// RoomExport is one room of an export.
type RoomExport struct {
	RoomID  string        `json:"room_id"`
	Members []Member      `json:"members"`
	Events  []ClientEvent `json:"events"`
}

// Member is a room member's profile as found in m.room.member state.
type Member struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"displayname,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// DecodeExport reads an export document.
func DecodeExport(r io.Reader) (*Export, error) {
	var export Export
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&export); err != nil {
		return nil, fmt.Errorf("%w: decoding export: %v", domain.ErrInvalidInput, err)
	}
	return &export, nil
}

// Snapshots converts the export to domain room snapshots.
func (e *Export) Snapshots() []domain.RoomSnapshot {
	out := make([]domain.RoomSnapshot, 0, len(e.Rooms))
	for _, room := range e.Rooms {
		snap := domain.RoomSnapshot{
			RoomID:  room.RoomID,
			Members: make([]domain.Profile, 0, len(room.Members)),
			Events:  make([]domain.Event, 0, len(room.Events)),
		}
		for _, m := range room.Members {
			snap.Members = append(snap.Members, domain.Profile{
				UserID:      m.UserID,
				DisplayName: m.DisplayName,
				AvatarURL:   m.AvatarURL,
			})
		}
		for _, ce := range room.Events {
			ev := ce.Event()
			if ev.RoomID == "" {
				ev.RoomID = room.RoomID
			}
			snap.Events = append(snap.Events, ev)
		}
		out = append(out, snap)
	}
	return out
}
