package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

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
	if m.result != nil {
		return m.result, nil
	}
	return &domain.SearchResult{}, nil
}

func post(t *testing.T, srv *Server, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	srv := NewServer(&mockSearchService{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"OK"`)
}

func TestSearch_MapsRequest(t *testing.T) {
	mock := &mockSearchService{}
	srv := NewServer(mock)

	rec := post(t, srv, SearchPath+"?next_batch=abc", `{
		"search_categories": {
			"room_events": {
				"search_term": "lorem ipsum",
				"order_by": "recent",
				"filter": {"rooms": ["!room:example.org"], "limit": 4},
				"event_context": {"before_limit": 2, "include_profile": true}
			}
		}
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.SearchQuery{
		Term:           "lorem ipsum",
		RoomID:         "!room:example.org",
		Limit:          4,
		BeforeLimit:    2,
		AfterLimit:     defaultContextLimit,
		IncludeProfile: true,
		OrderByRecent:  true,
		NextBatch:      "abc",
	}, mock.query)
}

func TestSearch_DefaultsWithoutContext(t *testing.T) {
	mock := &mockSearchService{}
	srv := NewServer(mock)

	rec := post(t, srv, SearchPath, `{"search_categories":{"room_events":{"search_term":"hello"}}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.SearchQuery{Term: "hello"}, mock.query)
	assert.Equal(t, domain.OrderRank, mock.query.Order())
}

func TestSearch_Response(t *testing.T) {
	ts := time.UnixMilli(1700000000000)
	event := domain.Event{
		ID:        "$2",
		RoomID:    "!room:example.org",
		Sender:    "@alice:example.org",
		Type:      domain.EventTypeMessage,
		Timestamp: ts,
		Body:      "lorem ipsum",
		Content:   map[string]any{"msgtype": "m.text", "body": "lorem ipsum"},
	}
	before := domain.Event{ID: "$1", RoomID: event.RoomID, Sender: event.Sender, Type: domain.EventTypeMessage, Timestamp: ts.Add(-time.Second)}

	mock := &mockSearchService{result: &domain.SearchResult{
		Count:      3,
		Highlights: []string{"ipsum", "lorem"},
		NextBatch:  "next",
		Items: []domain.SearchResultItem{{
			Event:   event,
			Rank:    2,
			Context: &domain.EventContext{Before: []domain.Event{before}, After: []domain.Event{}},
			Profile: &domain.Profile{UserID: event.Sender, DisplayName: "Alice", AvatarURL: "mxc://example.org/a"},
		}},
	}}
	srv := NewServer(mock)

	rec := post(t, srv, SearchPath, `{"search_categories":{"room_events":{"search_term":"lorem","event_context":{"include_profile":true}}}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		SearchCategories struct {
			RoomEvents struct {
				Count      int      `json:"count"`
				Highlights []string `json:"highlights"`
				NextBatch  string   `json:"next_batch"`
				Results    []struct {
					Rank   float64 `json:"rank"`
					Result struct {
						EventID        string         `json:"event_id"`
						Sender         string         `json:"sender"`
						OriginServerTS int64          `json:"origin_server_ts"`
						Content        map[string]any `json:"content"`
					} `json:"result"`
					Context struct {
						EventsBefore []map[string]any `json:"events_before"`
						EventsAfter  []map[string]any `json:"events_after"`
						ProfileInfo  map[string]struct {
							DisplayName string `json:"displayname"`
							AvatarURL   string `json:"avatar_url"`
						} `json:"profile_info"`
					} `json:"context"`
				} `json:"results"`
			} `json:"room_events"`
		} `json:"search_categories"`
	}
	decode(t, rec, &resp)

	got := resp.SearchCategories.RoomEvents
	assert.Equal(t, 3, got.Count)
	assert.Equal(t, []string{"ipsum", "lorem"}, got.Highlights)
	assert.Equal(t, "next", got.NextBatch)
	require.Len(t, got.Results, 1)

	r := got.Results[0]
	assert.Equal(t, 2.0, r.Rank)
	assert.Equal(t, "$2", r.Result.EventID)
	assert.Equal(t, int64(1700000000000), r.Result.OriginServerTS)
	assert.Equal(t, "lorem ipsum", r.Result.Content["body"])
	require.Len(t, r.Context.EventsBefore, 1)
	assert.Equal(t, "$1", r.Context.EventsBefore[0]["event_id"])
	assert.NotNil(t, r.Context.EventsAfter)
	assert.Empty(t, r.Context.EventsAfter)
	assert.Equal(t, "Alice", r.Context.ProfileInfo["@alice:example.org"].DisplayName)
}

func TestSearch_OmitsContextWhenNotRequested(t *testing.T) {
	mock := &mockSearchService{result: &domain.SearchResult{
		Count: 1,
		Items: []domain.SearchResultItem{{
			Event:   domain.Event{ID: "$1", RoomID: "!r", Type: domain.EventTypeMessage, Timestamp: time.UnixMilli(1)},
			Rank:    1,
			Context: &domain.EventContext{},
		}},
	}}
	srv := NewServer(mock)

	rec := post(t, srv, SearchPath, `{"search_categories":{"room_events":{"search_term":"x"}}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	decode(t, rec, &resp)
	results := resp["search_categories"].(map[string]any)["room_events"].(map[string]any)["results"].([]any)
	require.Len(t, results, 1)
	_, hasContext := results[0].(map[string]any)["context"]
	assert.False(t, hasContext)
	assert.NotContains(t, rec.Body.String(), "next_batch")
	assert.Contains(t, rec.Body.String(), `"highlights":[]`)
}

func TestSearch_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{"not json", `{"search_categories":`, errCodeNotJSON},
		{"missing category", `{"search_categories":{}}`, errCodeInvalidParam},
		{"bad order", `{"search_categories":{"room_events":{"search_term":"x","order_by":"oldest"}}}`, errCodeInvalidParam},
		{"several rooms", `{"search_categories":{"room_events":{"search_term":"x","filter":{"rooms":["!a","!b"]}}}}`, errCodeInvalidParam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer(&mockSearchService{})
			rec := post(t, srv, SearchPath, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var resp errorResponse
			decode(t, rec, &resp)
			assert.Equal(t, tt.code, resp.ErrCode)
		})
	}
}

func TestSearch_ErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: empty term", domain.ErrInvalidQuery), http.StatusBadRequest, errCodeInvalidParam},
		{domain.ErrInvalidCursor, http.StatusBadRequest, errCodeInvalidParam},
		{fmt.Errorf("%w: !x", domain.ErrRoomNotFound), http.StatusNotFound, errCodeNotFound},
		{fmt.Errorf("rooms: %w", domain.ErrCollaboratorUnavailable), http.StatusServiceUnavailable, errCodeUnknown},
		{errors.New("boom"), http.StatusInternalServerError, errCodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			srv := NewServer(&mockSearchService{err: tt.err})
			rec := post(t, srv, SearchPath, `{"search_categories":{"room_events":{"search_term":"x"}}}`)

			assert.Equal(t, tt.status, rec.Code)
			var resp errorResponse
			decode(t, rec, &resp)
			assert.Equal(t, tt.code, resp.ErrCode)
		})
	}
}

func TestCORS(t *testing.T) {
	srv := NewServer(&mockSearchService{}, WithAllowedOrigins("https://chat.example.org"))

	req := httptest.NewRequest(http.MethodOptions, SearchPath, nil)
	req.Header.Set("Origin", "https://chat.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "https://chat.example.org", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServe_StopsOnCancel(t *testing.T) {
	srv := NewServer(&mockSearchService{})
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, listener) }()

	url := "http://" + listener.Addr().String() + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
