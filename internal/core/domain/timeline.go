package domain

// RoomSnapshot is a room's state and timeline as delivered by an export
// or an initial sync.
type RoomSnapshot struct {
	RoomID string

	// Members are the member profiles as seen in this room.
	Members []Profile

	// Events are the timeline events, in any order.
	Events []Event
}

// ImportStats summarises an import.
type ImportStats struct {
	Rooms    int
	Profiles int
	Events   int

	// Searchable counts imported events that ended up in the index.
	Searchable int

	// Pending counts encrypted events that could not be decrypted yet.
	Pending int

	// Redacted counts imported tombstones.
	Redacted int
}
