package domain

import "time"

// SearchOrder selects how matches are ranked.
type SearchOrder string

// Available orderings.
const (
	// OrderRecent ranks newest events first.
	OrderRecent SearchOrder = "recent"

	// OrderRank ranks events by the number of matched tokens.
	OrderRank SearchOrder = "rank"
)

// IsValid returns true if the order is recognised.
func (o SearchOrder) IsValid() bool {
	return o == OrderRecent || o == OrderRank
}

// String returns the string representation.
func (o SearchOrder) String() string {
	return string(o)
}

// OrderKey is the position of a match in a result ordering.
type OrderKey struct {
	Rank      int
	Timestamp time.Time
	EventID   string
}

// Less reports whether a sorts before b under this order.
//
// Recent: timestamp descending, then event ID ascending.
// Rank: rank descending, then the recent ordering.
func (o SearchOrder) Less(a, b OrderKey) bool {
	if o == OrderRank && a.Rank != b.Rank {
		return a.Rank > b.Rank
	}
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.After(b.Timestamp)
	}
	return a.EventID < b.EventID
}

// Token is a normalised search token.
type Token struct {
	// Text is the case-folded token text.
	Text string

	// Prefix is true when the token also matches longer words.
	Prefix bool
}

// Posting is one event matched by an index lookup.
type Posting struct {
	EventID   string
	RoomID    string
	Timestamp time.Time

	// Hits counts the body tokens that matched the looked-up token.
	Hits int
}

// SearchQuery configures a message search.
type SearchQuery struct {
	// Term is the raw search term. Required.
	Term string

	// RoomID restricts the search to one room. Empty searches all joined rooms.
	RoomID string

	// Limit is the page size. Zero selects the configured default.
	Limit int

	// BeforeLimit is the number of preceding context events per result.
	BeforeLimit int

	// AfterLimit is the number of following context events per result.
	AfterLimit int

	// IncludeProfile attaches the sender profile to each result.
	IncludeProfile bool

	// OrderByRecent selects newest-first; false selects relevance-first.
	OrderByRecent bool

	// NextBatch resumes after a previous page. Empty for the first page.
	NextBatch string
}

// Order returns the ordering requested by the query.
func (q SearchQuery) Order() SearchOrder {
	if q.OrderByRecent {
		return OrderRecent
	}
	return OrderRank
}

// EventContext holds the timeline around a matched event.
type EventContext struct {
	// Before holds the preceding events, oldest first.
	Before []Event

	// After holds the following events, oldest first.
	After []Event
}

// SearchResultItem is a single matched event with its enrichment.
type SearchResultItem struct {
	// Event is the matched event.
	Event Event

	// Rank is the number of matched body tokens.
	Rank int

	// Context is the surrounding timeline. Nil if it could not be fetched.
	Context *EventContext

	// Profile is the sender profile. Nil if not requested or unknown.
	Profile *Profile
}

// SearchResult is one page of matches.
type SearchResult struct {
	// Items are the matches on this page, in the requested order.
	Items []SearchResultItem

	// Count is the total number of matches for the query.
	Count int

	// Highlights are the distinct body words matched on this page.
	Highlights []string

	// NextBatch resumes after this page. Empty when no more results exist.
	NextBatch string
}
