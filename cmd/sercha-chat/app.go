package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/custodia-labs/sercha-chat/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-chat/internal/adapters/driven/decrypt"
	bleveindex "github.com/custodia-labs/sercha-chat/internal/adapters/driven/index/bleve"
	memindex "github.com/custodia-labs/sercha-chat/internal/adapters/driven/index/memory"
	"github.com/custodia-labs/sercha-chat/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-chat/internal/adapters/driven/throttle"
	"github.com/custodia-labs/sercha-chat/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-chat/internal/core/services"
	"github.com/custodia-labs/sercha-chat/internal/logger"
)

// application owns the adapters and services of one process.
type application struct {
	config *file.ConfigStore
	store  *sqlite.Store
	index  driven.SearchIndex

	settings *services.SettingsService
	search   *services.SearchService
	timeline *services.TimelineService
	imports  *services.ImportService
}

// newApplication wires everything under home, or ~/.sercha-chat when
// home is empty.
func newApplication(ctx context.Context, home string) (*application, error) {
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		home = filepath.Join(userHome, ".sercha-chat")
	}
	dataDir := filepath.Join(home, "data")

	logger.Section("Startup")

	config, err := file.NewConfigStore(home)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(config)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	keyring := decrypt.NewKeyring()
	if err := keyring.LoadRoomKeys(settings.Crypto.RoomKeys); err != nil {
		return nil, fmt.Errorf("loading room keys: %w", err)
	}

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	logger.Debug("store: %s", store.Path())

	index, err := openIndex(settings.Index, dataDir)
	if err != nil {
		store.Close()
		return nil, err
	}

	events := store.EventStore()
	rooms := store.RoomDirectory()

	var profiles driven.ProfileStore = store.ProfileStore()
	if rate := settings.Profile.LookupRate; rate > 0 {
		profiles = throttle.NewProfileStore(profiles, rate, int(math.Ceil(rate)))
	}

	timeline := services.NewTimelineService(events, index, keyring, rooms)
	search := services.NewSearchService(index, events, profiles, rooms, settings.Search)
	search.SetTimeline(timeline)

	app := &application{
		config:   config,
		store:    store,
		index:    index,
		settings: settingsService,
		search:   search,
		timeline: timeline,
		imports:  services.NewImportService(timeline, events, store.ProfileStore(), rooms),
	}

	// The memory index starts empty every run.
	if settings.Index.Backend == domain.IndexBackendMemory {
		n, err := timeline.Rebuild(ctx)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("building index: %w", err)
		}
		logger.Debug("indexed %d events", n)
	}

	return app, nil
}

func openIndex(settings domain.IndexSettings, dataDir string) (driven.SearchIndex, error) {
	switch settings.Backend {
	case domain.IndexBackendBleve:
		index, err := bleveindex.Open(filepath.Join(dataDir, "index.bleve"))
		if err != nil {
			return nil, fmt.Errorf("opening index: %w", err)
		}
		return index, nil
	default:
		return memindex.New(memindex.WithBloomCapacity(settings.BloomCapacity)), nil
	}
}

func (a *application) services() *cli.Services {
	return &cli.Services{
		Search:   a.search,
		Timeline: a.timeline,
		Import:   a.imports,
		Settings: a.settings,
		Rooms:    a.store.RoomDirectory(),
		Events:   a.store.EventStore(),
		Applier:  a.search,
		Watcher:  a.config.Watch,
	}
}

// Close releases the index and the store.
func (a *application) Close() error {
	return errors.Join(a.index.Close(), a.store.Close())
}
