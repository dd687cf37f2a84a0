package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

// SearchInput is the input schema for the search_messages tool.
type SearchInput struct {
	Query          string `json:"query" jsonschema:"words to search for; the last word also matches as a prefix"`
	RoomID         string `json:"room_id,omitempty" jsonschema:"restrict the search to one room"`
	Limit          int    `json:"limit,omitempty" jsonschema:"maximum number of results to return"`
	Before         int    `json:"before,omitempty" jsonschema:"number of preceding messages to include per result"`
	After          int    `json:"after,omitempty" jsonschema:"number of following messages to include per result"`
	IncludeProfile bool   `json:"include_profile,omitempty" jsonschema:"attach the sender display name"`
	Recent         bool   `json:"recent,omitempty" jsonschema:"order newest first instead of by relevance"`
	NextBatch      string `json:"next_batch,omitempty" jsonschema:"token from a previous call to fetch the next page"`
}

// SearchOutput is the output schema for the search_messages tool.
type SearchOutput struct {
	Results    []MessageOutput `json:"results"`
	Count      int             `json:"count"`
	Highlights []string        `json:"highlights"`
	NextBatch  string          `json:"next_batch,omitempty"`
}

// MessageOutput is a single matched message.
type MessageOutput struct {
	EventID     string          `json:"event_id"`
	RoomID      string          `json:"room_id"`
	Sender      string          `json:"sender"`
	DisplayName string          `json:"display_name,omitempty"`
	Timestamp   string          `json:"timestamp"`
	Body        string          `json:"body"`
	Rank        int             `json:"rank"`
	Before      []ContextOutput `json:"before,omitempty"`
	After       []ContextOutput `json:"after,omitempty"`
}

// ContextOutput is a message surrounding a match.
type ContextOutput struct {
	EventID   string `json:"event_id"`
	Sender    string `json:"sender"`
	Timestamp string `json:"timestamp"`
	Body      string `json:"body,omitempty"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_messages",
		Description: "Search chat messages in joined rooms, with optional surrounding context",
	}, s.handleSearch)
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	result, err := s.ports.Search.Search(ctx, domain.SearchQuery{
		Term:           input.Query,
		RoomID:         input.RoomID,
		Limit:          input.Limit,
		BeforeLimit:    input.Before,
		AfterLimit:     input.After,
		IncludeProfile: input.IncludeProfile,
		OrderByRecent:  input.Recent,
		NextBatch:      input.NextBatch,
	})
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results:    make([]MessageOutput, len(result.Items)),
		Count:      result.Count,
		Highlights: result.Highlights,
		NextBatch:  result.NextBatch,
	}
	if output.Highlights == nil {
		output.Highlights = []string{}
	}

	for i, item := range result.Items {
		msg := MessageOutput{
			EventID:   item.Event.ID,
			RoomID:    item.Event.RoomID,
			Sender:    item.Event.Sender,
			Timestamp: formatTime(item.Event.Timestamp),
			Body:      item.Event.Body,
			Rank:      item.Rank,
		}
		if item.Profile != nil {
			msg.DisplayName = item.Profile.DisplayName
		}
		if item.Context != nil {
			msg.Before = contextOutput(item.Context.Before)
			msg.After = contextOutput(item.Context.After)
		}
		output.Results[i] = msg
	}

	return nil, output, nil
}

func contextOutput(events []domain.Event) []ContextOutput {
	if len(events) == 0 {
		return nil
	}
	out := make([]ContextOutput, len(events))
	for i, e := range events {
		out[i] = ContextOutput{
			EventID:   e.ID,
			Sender:    e.Sender,
			Timestamp: formatTime(e.Timestamp),
			Body:      e.Body,
		}
	}
	return out
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
