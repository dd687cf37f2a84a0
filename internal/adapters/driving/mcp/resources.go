package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-chat/internal/adapters/driving/matrix"
	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

const uriScheme = "sercha-chat://"

func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "rooms",
		Name:        "rooms",
		Description: "IDs of all joined rooms",
		MIMEType:    "application/json",
	}, s.handleRoomsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "events/{eventId}",
		Name:        "event",
		Description: "A single timeline event in client-server format",
		MIMEType:    "application/json",
	}, s.handleEventResource)
}

func (s *Server) handleRoomsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	rooms := []string{}
	if s.ports.Rooms != nil {
		joined, err := s.ports.Rooms.JoinedRooms(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing rooms: %w", err)
		}
		rooms = append(rooms, joined...)
	}

	return jsonResource(req.Params.URI, rooms)
}

func (s *Server) handleEventResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Events == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	eventID := extractEventID(req.Params.URI)
	if eventID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	event, err := s.ports.Events.GetEvent(ctx, eventID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting event: %w", err)
	}

	return jsonResource(req.Params.URI, matrix.FromEvent(*event))
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractEventID extracts the event ID from sercha-chat://events/{eventId}.
func extractEventID(uri string) string {
	const prefix = uriScheme + "events/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
