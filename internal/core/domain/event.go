package domain

import (
	"math"
	"time"
)

// EventTypeMessage is the only event type carrying a searchable body.
const EventTypeMessage = "m.room.message"

// Event timestamps are stored as Unix nanoseconds and must lie within
// [MinTimestamp, MaxTimestamp].
var (
	MinTimestamp = time.Unix(0, math.MinInt64).UTC()
	MaxTimestamp = time.Unix(0, math.MaxInt64).UTC()
)

// ValidTimestamp reports whether t can be stored without loss.
func ValidTimestamp(t time.Time) bool {
	return !t.Before(MinTimestamp) && !t.After(MaxTimestamp)
}

// Event is an immutable record from a room timeline.
//
// Body holds the searchable text. It is empty while the event is still
// encrypted and filled in once the decryption collaborator succeeds.
type Event struct {
	// ID is the unique, opaque event identifier.
	ID string

	// RoomID is the room whose timeline holds the event.
	RoomID string

	// Sender is the user ID of the author.
	Sender string

	// Type is the event type, e.g. m.room.message.
	Type string

	// Timestamp orders events within a room's timeline.
	Timestamp time.Time

	// Body is the plaintext body. Empty means not (yet) searchable.
	Body string

	// Encrypted is true when the event arrived end-to-end encrypted.
	Encrypted bool

	// Redacted is true once the event content has been removed.
	Redacted bool

	// Content is the raw event content, passed through to callers untouched.
	Content map[string]any
}

// Searchable reports whether the event can be indexed.
func (e Event) Searchable() bool {
	return e.Body != "" && !e.Redacted
}

// Pending reports whether the event still waits for decryption.
func (e Event) Pending() bool {
	return e.Encrypted && e.Body == "" && !e.Redacted
}

// WithBody returns a copy of the event carrying the decrypted body.
// The raw content gains a "body" field so callers see decrypted content.
func (e Event) WithBody(body string) Event {
	out := e
	out.Body = body
	out.Content = make(map[string]any, len(e.Content)+1)
	for k, v := range e.Content {
		out.Content[k] = v
	}
	out.Content["body"] = body
	return out
}

// Redact returns the tombstone left in the timeline after a redaction.
func (e Event) Redact() Event {
	return Event{
		ID:        e.ID,
		RoomID:    e.RoomID,
		Sender:    e.Sender,
		Type:      e.Type,
		Timestamp: e.Timestamp,
		Encrypted: e.Encrypted,
		Redacted:  true,
	}
}

// Profile is a snapshot of a sender's room profile.
type Profile struct {
	// UserID is the profile owner.
	UserID string

	// DisplayName is the room-specific display name.
	DisplayName string

	// AvatarURL is the avatar content URI.
	AvatarURL string
}
