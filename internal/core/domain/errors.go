package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Search Errors.
	//
	// These are fatal to a search call and reported to the caller as-is.

	// ErrInvalidQuery indicates an empty or malformed search term or
	// out-of-range paging parameters.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrRoomNotFound indicates the scoped room is unknown to the session.
	ErrRoomNotFound = errors.New("room not found")

	// ErrInvalidCursor indicates a malformed next-batch token, or one issued
	// for a different query or ordering. Callers restart without a cursor.
	ErrInvalidCursor = errors.New("invalid cursor")

	// Collaborator Errors.

	// ErrCollaboratorUnavailable indicates a context or profile lookup failed
	// transiently. The engine degrades the affected result item instead of
	// failing the page.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")

	// ErrIndexClosed indicates the search index has been closed.
	ErrIndexClosed = errors.New("search index closed")
)
