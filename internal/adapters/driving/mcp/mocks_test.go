package mcp

import (
	"context"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	query  domain.SearchQuery
	result *domain.SearchResult
	err    error
}

func (m *mockSearchService) Search(_ context.Context, query domain.SearchQuery) (*domain.SearchResult, error) {
	m.query = query
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &domain.SearchResult{}, nil
	}
	return m.result, nil
}

type mockRoomLister struct {
	rooms []string
	err   error
}

func (m *mockRoomLister) JoinedRooms(_ context.Context) ([]string, error) {
	return m.rooms, m.err
}

type mockEventReader struct {
	events map[string]domain.Event
	err    error
}

func (m *mockEventReader) GetEvent(_ context.Context, id string) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	e, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &e, nil
}
