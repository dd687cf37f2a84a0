package services

import (
	"fmt"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyDefaultLimit  = "search.default_limit"
	keyMaxLimit      = "search.max_limit"
	keyMaxContext    = "search.max_context"
	keyConcurrency   = "search.concurrency"
	keyIndexBackend  = "index.backend"
	keyBloomCapacity = "index.bloom_capacity"
	keyLookupRate    = "profile.lookup_rate"
	keyRoomKeys      = "crypto.room_keys"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
// Missing or out-of-range values fall back to the defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Search: domain.SearchSettings{
			DefaultLimit: s.getInt(keyDefaultLimit, defaults.Search.DefaultLimit),
			MaxLimit:     s.getInt(keyMaxLimit, defaults.Search.MaxLimit),
			MaxContext:   s.getInt(keyMaxContext, defaults.Search.MaxContext),
			Concurrency:  s.getInt(keyConcurrency, defaults.Search.Concurrency),
		},
		Index: domain.IndexSettings{
			Backend:       s.getBackend(defaults.Index.Backend),
			BloomCapacity: s.getInt(keyBloomCapacity, defaults.Index.BloomCapacity),
		},
		Profile: domain.ProfileSettings{
			LookupRate: s.getFloat(keyLookupRate, defaults.Profile.LookupRate),
		},
		Crypto: domain.CryptoSettings{
			RoomKeys: s.configStore.GetStringSlice(keyRoomKeys),
		},
	}

	// A default above the cap would never be honoured.
	if settings.Search.DefaultLimit > settings.Search.MaxLimit {
		settings.Search.DefaultLimit = settings.Search.MaxLimit
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := validateSettings(settings); err != nil {
		return err
	}

	if err := s.configStore.Set(keyDefaultLimit, settings.Search.DefaultLimit); err != nil {
		return fmt.Errorf("save default limit: %w", err)
	}
	if err := s.configStore.Set(keyMaxLimit, settings.Search.MaxLimit); err != nil {
		return fmt.Errorf("save max limit: %w", err)
	}
	if err := s.configStore.Set(keyMaxContext, settings.Search.MaxContext); err != nil {
		return fmt.Errorf("save max context: %w", err)
	}
	if err := s.configStore.Set(keyConcurrency, settings.Search.Concurrency); err != nil {
		return fmt.Errorf("save concurrency: %w", err)
	}
	if err := s.configStore.Set(keyIndexBackend, settings.Index.Backend.String()); err != nil {
		return fmt.Errorf("save index backend: %w", err)
	}
	if err := s.configStore.Set(keyBloomCapacity, settings.Index.BloomCapacity); err != nil {
		return fmt.Errorf("save bloom capacity: %w", err)
	}
	if err := s.configStore.Set(keyLookupRate, settings.Profile.LookupRate); err != nil {
		return fmt.Errorf("save lookup rate: %w", err)
	}
	if len(settings.Crypto.RoomKeys) > 0 {
		if err := s.configStore.Set(keyRoomKeys, settings.Crypto.RoomKeys); err != nil {
			return fmt.Errorf("save room keys: %w", err)
		}
	}

	return nil
}

// GetDefaults returns the default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func validateSettings(settings *domain.AppSettings) error {
	if settings == nil {
		return domain.ErrInvalidInput
	}
	switch {
	case settings.Search.DefaultLimit <= 0, settings.Search.MaxLimit <= 0:
		return fmt.Errorf("%w: search limits must be positive", domain.ErrInvalidInput)
	case settings.Search.DefaultLimit > settings.Search.MaxLimit:
		return fmt.Errorf("%w: default limit %d exceeds max limit %d",
			domain.ErrInvalidInput, settings.Search.DefaultLimit, settings.Search.MaxLimit)
	case settings.Search.MaxContext <= 0:
		return fmt.Errorf("%w: max context must be positive", domain.ErrInvalidInput)
	case settings.Search.Concurrency <= 0:
		return fmt.Errorf("%w: concurrency must be positive", domain.ErrInvalidInput)
	case !settings.Index.Backend.IsValid():
		return fmt.Errorf("%w: unknown index backend %q", domain.ErrInvalidInput, settings.Index.Backend)
	case settings.Profile.LookupRate < 0:
		return fmt.Errorf("%w: lookup rate must not be negative", domain.ErrInvalidInput)
	}
	return nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	val := s.configStore.GetFloat(key)
	if val < 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBackend(defaultVal domain.IndexBackend) domain.IndexBackend {
	backend := domain.IndexBackend(s.configStore.GetString(keyIndexBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
