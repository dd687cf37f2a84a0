package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	bleveindex "github.com/custodia-labs/sercha-chat/internal/adapters/driven/index/bleve"
	memindex "github.com/custodia-labs/sercha-chat/internal/adapters/driven/index/memory"
	"github.com/custodia-labs/sercha-chat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driven"
)

var baseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

const (
	roomA = "!a:example.org"
	roomB = "!b:example.org"
	alice = "@alice:example.org"
	bob   = "@bob:example.org"
)

// testEngine wires the services over the in-memory stores and a search index.
type testEngine struct {
	events    *memory.EventStore
	index     driven.SearchIndex
	profiles  *memory.ProfileStore
	rooms     *memory.RoomDirectory
	decryptor *mockDecryptor
	timeline  *TimelineService
	search    *SearchService
	seq       int
}

// indexBackends lists the search index implementations the engine runs on.
var indexBackends = []struct {
	name string
	open func(t *testing.T) driven.SearchIndex
}{
	{"memory", func(*testing.T) driven.SearchIndex { return memindex.New() }},
	{"bleve", func(t *testing.T) driven.SearchIndex {
		ix, err := bleveindex.Open("")
		require.NoError(t, err)
		t.Cleanup(func() { _ = ix.Close() })
		return ix
	}},
}

// forEachBackend runs fn once per index backend, each on a fresh engine.
func forEachBackend(t *testing.T, fn func(t *testing.T, e *testEngine)) {
	for _, backend := range indexBackends {
		t.Run(backend.name, func(t *testing.T) {
			fn(t, newTestEngineWith(t, backend.open(t)))
		})
	}
}

func newTestEngine(t *testing.T) *testEngine {
	t.Helper()
	return newTestEngineWith(t, memindex.New())
}

func newTestEngineWith(t *testing.T, index driven.SearchIndex) *testEngine {
	t.Helper()

	e := &testEngine{
		events:    memory.NewEventStore(),
		index:     index,
		profiles:  memory.NewProfileStore(),
		rooms:     memory.NewRoomDirectory(roomA, roomB),
		decryptor: newMockDecryptor(),
	}
	e.timeline = NewTimelineService(e.events, e.index, e.decryptor, e.rooms)
	e.search = NewSearchService(e.index, e.events, e.profiles, e.rooms, domain.DefaultAppSettings().Search)
	e.search.SetTimeline(e.timeline)

	ctx := context.Background()
	require.NoError(t, e.profiles.SaveProfile(ctx, roomA, domain.Profile{UserID: alice, DisplayName: "Alice", AvatarURL: "mxc://example.org/alice"}))
	require.NoError(t, e.profiles.SaveProfile(ctx, roomB, domain.Profile{UserID: bob, DisplayName: "Bob"}))
	return e
}

// send appends a plaintext message one minute after the previous one.
func (e *testEngine) send(t *testing.T, roomID, sender, body string) domain.Event {
	t.Helper()
	e.seq++
	event := domain.Event{
		ID:        fmt.Sprintf("$%03d", e.seq),
		RoomID:    roomID,
		Sender:    sender,
		Type:      domain.EventTypeMessage,
		Timestamp: baseTime.Add(time.Duration(e.seq) * time.Minute),
		Body:      body,
		Content:   map[string]any{"msgtype": "m.text", "body": body},
	}
	require.NoError(t, e.timeline.AddEvent(context.Background(), event))
	return event
}

// sendEncrypted appends an encrypted message whose plaintext is known to
// the mock decryptor only once unlocked.
func (e *testEngine) sendEncrypted(t *testing.T, roomID, sender, plaintext string) domain.Event {
	t.Helper()
	e.seq++
	event := domain.Event{
		ID:        fmt.Sprintf("$%03d", e.seq),
		RoomID:    roomID,
		Sender:    sender,
		Type:      "m.room.encrypted",
		Timestamp: baseTime.Add(time.Duration(e.seq) * time.Minute),
		Encrypted: true,
		Content:   map[string]any{"algorithm": "test"},
	}
	e.decryptor.plaintexts[event.ID] = plaintext
	require.NoError(t, e.timeline.AddEvent(context.Background(), event))
	return event
}

func itemIDs(items []domain.SearchResultItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Event.ID
	}
	return out
}

func ids(events []domain.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

// --- Mock implementations ---

// mockDecryptor decrypts events whose ID has been unlocked.
type mockDecryptor struct {
	mu         sync.Mutex
	plaintexts map[string]string
	unlocked   map[string]bool
	calls      int
}

func newMockDecryptor() *mockDecryptor {
	return &mockDecryptor{
		plaintexts: make(map[string]string),
		unlocked:   make(map[string]bool),
	}
}

func (m *mockDecryptor) unlock(eventID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unlocked[eventID] = true
}

func (m *mockDecryptor) TryDecrypt(_ context.Context, event domain.Event) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if !m.unlocked[event.ID] {
		return "", false
	}
	body, ok := m.plaintexts[event.ID]
	return body, ok
}

// flakyEventStore fails context lookups for selected events.
type flakyEventStore struct {
	*memory.EventStore
	failContext map[string]bool
	getErr      error
}

var errStoreOffline = errors.New("store offline")

func (f *flakyEventStore) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.EventStore.GetEvent(ctx, id)
}

func (f *flakyEventStore) EventsBefore(ctx context.Context, eventID, roomID string, count int) ([]domain.Event, error) {
	if f.failContext[eventID] {
		return nil, errStoreOffline
	}
	return f.EventStore.EventsBefore(ctx, eventID, roomID, count)
}

func (f *flakyEventStore) EventsAfter(ctx context.Context, eventID, roomID string, count int) ([]domain.Event, error) {
	if f.failContext[eventID] {
		return nil, errStoreOffline
	}
	return f.EventStore.EventsAfter(ctx, eventID, roomID, count)
}

// failingProfileStore returns err for every lookup.
type failingProfileStore struct {
	err error
}

func (f failingProfileStore) GetProfile(context.Context, string, string) (*domain.Profile, error) {
	return nil, f.err
}

// failingRoomDirectory returns err for every call.
type failingRoomDirectory struct {
	err error
}

func (f failingRoomDirectory) JoinedRooms(context.Context) ([]string, error) {
	return nil, f.err
}

// mockIndex returns canned postings per token text.
type mockIndex struct {
	postings  map[string][]domain.Posting
	lookupErr error
	lookups   []string
}

func (m *mockIndex) Index(context.Context, domain.Event) error { return nil }
func (m *mockIndex) Remove(context.Context, string) error      { return nil }
func (m *mockIndex) Close() error                              { return nil }

func (m *mockIndex) Lookup(_ context.Context, token domain.Token, _ []string) ([]domain.Posting, error) {
	m.lookups = append(m.lookups, token.Text)
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	return m.postings[token.Text], nil
}
