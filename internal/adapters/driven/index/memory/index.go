package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-chat/internal/logger"
	"github.com/custodia-labs/sercha-chat/internal/tokenizer"
)

// Ensure Index implements the interface.
var _ driven.SearchIndex = (*Index)(nil)

const (
	// DefaultBloomCapacity is the initial number of distinct tokens per room
	// the bloom filter is sized for.
	DefaultBloomCapacity = 4096

	// bloomFalsePositiveRate is the target false positive rate of room filters.
	bloomFalsePositiveRate = 0.01
)

var log = logger.For("index")

// entry is the reverse mapping kept for every indexed event.
type entry struct {
	roomID    string
	timestamp time.Time
	counts    map[string]int
}

// Index is an in-memory, room-scoped inverted index.
type Index struct {
	mu            sync.RWMutex
	closed        bool
	rooms         map[string]*roomIndex
	events        map[string]*entry
	bloomCapacity uint
}

// Option configures an Index.
type Option func(*Index)

// WithBloomCapacity sets the initial per-room bloom filter capacity.
func WithBloomCapacity(n int) Option {
	return func(ix *Index) {
		if n > 0 {
			ix.bloomCapacity = uint(n)
		}
	}
}

// New creates an empty index.
func New(opts ...Option) *Index {
	ix := &Index{
		rooms:         make(map[string]*roomIndex),
		events:        make(map[string]*entry),
		bloomCapacity: DefaultBloomCapacity,
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Index registers the event under every token of its body.
func (ix *Index) Index(_ context.Context, event domain.Event) error {
	var counts map[string]int
	if event.Searchable() {
		counts = tokenizer.Counts(event.Body)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.closed {
		return domain.ErrIndexClosed
	}

	ix.removeLocked(event.ID)
	if len(counts) == 0 {
		return nil
	}

	room, ok := ix.rooms[event.RoomID]
	if !ok {
		room = newRoomIndex(ix.bloomCapacity)
		ix.rooms[event.RoomID] = room
	}
	for tok, n := range counts {
		room.add(tok, event.ID, n)
	}
	ix.events[event.ID] = &entry{
		roomID:    event.RoomID,
		timestamp: event.Timestamp,
		counts:    counts,
	}

	log.Debug("indexed %s in %s: %d distinct tokens", event.ID, event.RoomID, len(counts))
	return nil
}

// Remove deletes the event from all postings.
func (ix *Index) Remove(_ context.Context, eventID string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.closed {
		return domain.ErrIndexClosed
	}
	ix.removeLocked(eventID)
	return nil
}

// removeLocked drops an event's postings (caller must hold the write lock).
func (ix *Index) removeLocked(eventID string) {
	e, ok := ix.events[eventID]
	if !ok {
		return
	}
	if room, ok := ix.rooms[e.roomID]; ok {
		for tok := range e.counts {
			room.remove(tok, eventID)
		}
		if len(room.postings) == 0 {
			delete(ix.rooms, e.roomID)
		}
	}
	delete(ix.events, eventID)
}

// Lookup returns the postings matching token in the given rooms,
// newest first with ties broken by event ID.
func (ix *Index) Lookup(ctx context.Context, token domain.Token, roomIDs []string) ([]domain.Posting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ix.closed {
		return nil, domain.ErrIndexClosed
	}

	var postings []domain.Posting
	seen := make(map[string]bool, len(roomIDs))
	for _, roomID := range roomIDs {
		if seen[roomID] {
			continue
		}
		seen[roomID] = true

		room, ok := ix.rooms[roomID]
		if !ok {
			continue
		}
		for id, hits := range room.match(token) {
			e := ix.events[id]
			postings = append(postings, domain.Posting{
				EventID:   id,
				RoomID:    roomID,
				Timestamp: e.timestamp,
				Hits:      hits,
			})
		}
	}

	sort.Slice(postings, func(i, j int) bool {
		a, b := postings[i], postings[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		return a.EventID < b.EventID
	})
	return postings, nil
}

// Len returns the number of indexed events.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.events)
}

// Close releases the index. Further calls fail with domain.ErrIndexClosed.
func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.closed = true
	ix.rooms = nil
	ix.events = nil
	return nil
}

// roomIndex holds the postings of a single room.
type roomIndex struct {
	postings map[string]map[string]int // token -> eventID -> occurrences
	terms    []string                  // sorted distinct tokens

	filter      *bloom.BloomFilter
	filterCap   uint
	filterCount uint
}

func newRoomIndex(capacity uint) *roomIndex {
	return &roomIndex{
		postings:  make(map[string]map[string]int),
		filter:    bloom.NewWithEstimates(capacity, bloomFalsePositiveRate),
		filterCap: capacity,
	}
}

func (r *roomIndex) add(tok, eventID string, n int) {
	docs, ok := r.postings[tok]
	if !ok {
		docs = make(map[string]int)
		r.postings[tok] = docs

		i := sort.SearchStrings(r.terms, tok)
		r.terms = append(r.terms, "")
		copy(r.terms[i+1:], r.terms[i:])
		r.terms[i] = tok

		r.addToFilter(tok)
	}
	docs[eventID] = n
}

func (r *roomIndex) remove(tok, eventID string) {
	docs, ok := r.postings[tok]
	if !ok {
		return
	}
	delete(docs, eventID)
	if len(docs) > 0 {
		return
	}
	delete(r.postings, tok)
	i := sort.SearchStrings(r.terms, tok)
	if i < len(r.terms) && r.terms[i] == tok {
		r.terms = append(r.terms[:i], r.terms[i+1:]...)
	}
	// Bloom filters cannot forget; a stale bit only costs a map miss.
}

// addToFilter records tok, doubling the filter once it is over capacity.
func (r *roomIndex) addToFilter(tok string) {
	r.filterCount++
	if r.filterCount > r.filterCap {
		r.filterCap *= 2
		r.filter = bloom.NewWithEstimates(r.filterCap, bloomFalsePositiveRate)
		for _, t := range r.terms {
			r.filter.AddString(t)
		}
		r.filterCount = uint(len(r.terms))
		return
	}
	r.filter.AddString(tok)
}

// match returns eventID -> hits for a token.
func (r *roomIndex) match(token domain.Token) map[string]int {
	if !token.Prefix {
		if !r.filter.TestString(token.Text) {
			return nil
		}
		return r.postings[token.Text]
	}

	hits := make(map[string]int)
	for i := sort.SearchStrings(r.terms, token.Text); i < len(r.terms); i++ {
		if !strings.HasPrefix(r.terms[i], token.Text) {
			break
		}
		for id, n := range r.postings[r.terms[i]] {
			hits[id] += n
		}
	}
	return hits
}
