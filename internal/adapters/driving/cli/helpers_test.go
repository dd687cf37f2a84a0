package cli

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

var testTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// mockSearchService returns a fixed page and records the query.
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
	return m.result, nil
}

type mockTimelineService struct {
	redacted []string
	rebuilt  int
	err      error
}

func (m *mockTimelineService) AddEvent(_ context.Context, _ domain.Event) error { return m.err }

func (m *mockTimelineService) OnDecrypted(_ context.Context, _, _ string) error { return m.err }

func (m *mockTimelineService) RetryDecryption(_ context.Context, _ []string) (int, error) {
	return 0, m.err
}

func (m *mockTimelineService) Redact(_ context.Context, eventID string) error {
	if m.err != nil {
		return m.err
	}
	m.redacted = append(m.redacted, eventID)
	return nil
}

func (m *mockTimelineService) Rebuild(_ context.Context) (int, error) {
	return m.rebuilt, m.err
}

type mockImportService struct {
	rooms []domain.RoomSnapshot
	err   error
}

func (m *mockImportService) Import(_ context.Context, rooms []domain.RoomSnapshot) (*domain.ImportStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.rooms = rooms
	stats := &domain.ImportStats{Rooms: len(rooms)}
	for _, r := range rooms {
		stats.Profiles += len(r.Members)
		stats.Events += len(r.Events)
		for _, e := range r.Events {
			switch {
			case e.Redacted:
				stats.Redacted++
			case e.Pending():
				stats.Pending++
			case e.Searchable():
				stats.Searchable++
			}
		}
	}
	return stats, nil
}

// mockSettingsService keeps settings in memory and rejects what the
// real service would reject.
type mockSettingsService struct {
	settings domain.AppSettings
	saved    bool
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	if settings.Search.DefaultLimit <= 0 || settings.Search.DefaultLimit > settings.Search.MaxLimit {
		return errors.New("invalid input: default limit out of range")
	}
	m.settings = *settings
	m.saved = true
	return nil
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

type testServices struct {
	search   *mockSearchService
	timeline *mockTimelineService
	imports  *mockImportService
	settings *mockSettingsService
}

var services *testServices

func sampleResult() *domain.SearchResult {
	return &domain.SearchResult{
		Count:      2,
		Highlights: []string{"lorem"},
		NextBatch:  "cursor-token",
		Items: []domain.SearchResultItem{
			{
				Event: domain.Event{
					ID:        "$2",
					RoomID:    "!room:example.org",
					Sender:    "@alice:example.org",
					Type:      domain.EventTypeMessage,
					Timestamp: testTime,
					Body:      "lorem ipsum dolor",
				},
				Rank: 1,
				Context: &domain.EventContext{
					Before: []domain.Event{{
						ID: "$1", Sender: "@bob:example.org", Type: domain.EventTypeMessage,
						Timestamp: testTime.Add(-time.Minute), Body: "good morning",
					}},
					After: []domain.Event{{
						ID: "$3", Sender: "@bob:example.org", Type: domain.EventTypeMessage,
						Timestamp: testTime.Add(time.Minute), Redacted: true,
					}},
				},
				Profile: &domain.Profile{UserID: "@alice:example.org", DisplayName: "Alice"},
			},
		},
	}
}

// setupTestServices installs mocks and resets command flags.
// The returned function restores the previous services.
func setupTestServices() func() {
	oldSearch, oldTimeline, oldImport, oldSettings := searchService, timelineService, importService, settingsService

	services = &testServices{
		search:   &mockSearchService{result: sampleResult()},
		timeline: &mockTimelineService{},
		imports:  &mockImportService{},
		settings: &mockSettingsService{settings: domain.DefaultAppSettings()},
	}
	searchService = services.search
	timelineService = services.timeline
	importService = services.imports
	settingsService = services.settings

	resetSearchFlags()

	return func() {
		searchService, timelineService, importService, settingsService = oldSearch, oldTimeline, oldImport, oldSettings
		resetSearchFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}
}

func resetSearchFlags() {
	searchRoom = ""
	searchLimit = 0
	searchBefore = 0
	searchAfter = 0
	searchProfile = false
	searchRank = false
	searchNextBatch = ""
	searchJSON = false
}

func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}
