package matrix

import (
	"time"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/normalisers/html"
)

// EventTypeEncrypted is the type of end-to-end encrypted events.
const EventTypeEncrypted = "m.room.encrypted"

// ClientEvent is an event in the client-server API format.
type ClientEvent struct {
	EventID        string         `json:"event_id"`
	RoomID         string         `json:"room_id,omitempty"`
	Sender         string         `json:"sender"`
	Type           string         `json:"type"`
	OriginServerTS int64          `json:"origin_server_ts"`
	Content        map[string]any `json:"content"`
	Unsigned       *Unsigned      `json:"unsigned,omitempty"`
}

// Unsigned holds server-added event metadata.
type Unsigned struct {
	RedactedBecause map[string]any `json:"redacted_because,omitempty"`
}

// FromEvent renders a domain event.
func FromEvent(e domain.Event) ClientEvent {
	content := e.Content
	if content == nil {
		content = map[string]any{}
	}
	ce := ClientEvent{
		EventID:        e.ID,
		RoomID:         e.RoomID,
		Sender:         e.Sender,
		Type:           e.Type,
		OriginServerTS: e.Timestamp.UnixMilli(),
		Content:        content,
	}
	if e.Redacted {
		ce.Unsigned = &Unsigned{RedactedBecause: map[string]any{}}
	}
	return ce
}

// FromEvents renders a slice of domain events. The result is never nil.
func FromEvents(events []domain.Event) []ClientEvent {
	out := make([]ClientEvent, len(events))
	for i, e := range events {
		out[i] = FromEvent(e)
	}
	return out
}

// Event converts to a domain event. The body is taken from content.body,
// which also covers encrypted events exported after decryption, falling
// back to the text of an HTML formatted_body.
func (c ClientEvent) Event() domain.Event {
	body := html.Body(c.Content)
	return domain.Event{
		ID:        c.EventID,
		RoomID:    c.RoomID,
		Sender:    c.Sender,
		Type:      c.Type,
		Timestamp: time.UnixMilli(c.OriginServerTS).UTC(),
		Body:      body,
		Encrypted: c.Type == EventTypeEncrypted,
		Redacted:  c.Unsigned != nil && c.Unsigned.RedactedBecause != nil,
		Content:   c.Content,
	}
}
