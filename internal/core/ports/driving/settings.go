package driving

import "github.com/custodia-labs/sercha-chat/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// GetDefaults returns the default settings.
	GetDefaults() domain.AppSettings
}
