package rest

import "github.com/custodia-labs/sercha-chat/internal/adapters/driving/matrix"

// Order values accepted in order_by.
const (
	orderRecent = "recent"
	orderRank   = "rank"
)

// defaultContextLimit applies when event_context omits a limit.
const defaultContextLimit = 5

type searchRequest struct {
	SearchCategories struct {
		RoomEvents *roomEventsCriteria `json:"room_events"`
	} `json:"search_categories"`
}

type roomEventsCriteria struct {
	SearchTerm   string        `json:"search_term"`
	OrderBy      string        `json:"order_by,omitempty"`
	Filter       *roomFilter   `json:"filter,omitempty"`
	EventContext *eventContext `json:"event_context,omitempty"`
}

type roomFilter struct {
	Rooms []string `json:"rooms,omitempty"`
	Limit int      `json:"limit,omitempty"`
}

type eventContext struct {
	BeforeLimit    *int `json:"before_limit,omitempty"`
	AfterLimit     *int `json:"after_limit,omitempty"`
	IncludeProfile bool `json:"include_profile,omitempty"`
}

type searchResponse struct {
	SearchCategories responseCategories `json:"search_categories"`
}

type responseCategories struct {
	RoomEvents roomEventsResult `json:"room_events"`
}

type roomEventsResult struct {
	Count      int            `json:"count"`
	Highlights []string       `json:"highlights"`
	NextBatch  string         `json:"next_batch,omitempty"`
	Results    []searchResult `json:"results"`
}

type searchResult struct {
	Rank    float64             `json:"rank"`
	Result  matrix.ClientEvent  `json:"result"`
	Context *eventContextResult `json:"context,omitempty"`
}

type eventContextResult struct {
	EventsBefore []matrix.ClientEvent   `json:"events_before"`
	EventsAfter  []matrix.ClientEvent   `json:"events_after"`
	ProfileInfo  map[string]profileInfo `json:"profile_info,omitempty"`
}

type profileInfo struct {
	DisplayName string `json:"displayname,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

type errorResponse struct {
	ErrCode string `json:"errcode"`
	Error   string `json:"error"`
}
