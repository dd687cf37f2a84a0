package mcp

import (
	"context"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driving"
)

// RoomLister lists the rooms visible to the session.
type RoomLister interface {
	JoinedRooms(ctx context.Context) ([]string, error)
}

// EventReader reads single timeline events.
type EventReader interface {
	GetEvent(ctx context.Context, id string) (*domain.Event, error)
}

// Ports aggregates everything the MCP server talks to.
type Ports struct {
	// Search provides search capabilities.
	Search driving.SearchService

	// Rooms backs the rooms resource. Optional.
	Rooms RoomLister

	// Events backs the event resource. Optional.
	Events EventReader
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
