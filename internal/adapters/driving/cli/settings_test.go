package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

func TestSettingsCmd_Show(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	services.settings.settings.Crypto.RoomKeys = []string{"!b:example.org=AAAA", "!a:example.org=BBBB"}

	out, err := execute("settings", "show")
	require.NoError(t, err)

	assert.Contains(t, out, "Default limit: 10")
	assert.Contains(t, out, "Max context: 50")
	assert.Contains(t, out, "In-memory inverted index")
	assert.Contains(t, out, "Bloom capacity: 4096")
	assert.Contains(t, out, "Lookup rate: unlimited")
	assert.Contains(t, out, "Room keys: !a:example.org, !b:example.org")
	assert.NotContains(t, out, "AAAA")
}

func TestSettingsCmd_Set(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("settings", "set", "search.default_limit", "25")
	require.NoError(t, err)

	assert.Contains(t, out, "Set search.default_limit")
	assert.True(t, services.settings.saved)
	assert.Equal(t, 25, services.settings.settings.Search.DefaultLimit)
}

func TestSettingsCmd_SetRejectedBySettings(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("settings", "set", "search.default_limit", "500")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save settings")
	assert.False(t, services.settings.saved)
}

func TestSettingsCmd_NotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	settingsService = nil

	_, err := execute("settings", "show")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings service not configured")
}

func TestApplySetting(t *testing.T) {
	tests := []struct {
		key   string
		value string
		check func(t *testing.T, s domain.AppSettings)
	}{
		{"search.max_limit", "200", func(t *testing.T, s domain.AppSettings) { assert.Equal(t, 200, s.Search.MaxLimit) }},
		{"search.max_context", "7", func(t *testing.T, s domain.AppSettings) { assert.Equal(t, 7, s.Search.MaxContext) }},
		{"search.concurrency", "2", func(t *testing.T, s domain.AppSettings) { assert.Equal(t, 2, s.Search.Concurrency) }},
		{"index.backend", "bleve", func(t *testing.T, s domain.AppSettings) {
			assert.Equal(t, domain.IndexBackendBleve, s.Index.Backend)
		}},
		{"index.bloom_capacity", "100", func(t *testing.T, s domain.AppSettings) { assert.Equal(t, 100, s.Index.BloomCapacity) }},
		{"profile.lookup_rate", "2.5", func(t *testing.T, s domain.AppSettings) { assert.Equal(t, 2.5, s.Profile.LookupRate) }},
		{"crypto.room_keys", " !a=x, ,!b=y ", func(t *testing.T, s domain.AppSettings) {
			assert.Equal(t, []string{"!a=x", "!b=y"}, s.Crypto.RoomKeys)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			s := domain.DefaultAppSettings()
			require.NoError(t, applySetting(&s, tt.key, tt.value))
			tt.check(t, s)
		})
	}
}

func TestApplySetting_Errors(t *testing.T) {
	s := domain.DefaultAppSettings()

	assert.ErrorContains(t, applySetting(&s, "search.nope", "1"), "unknown setting")
	assert.ErrorContains(t, applySetting(&s, "search.max_limit", "many"), "invalid value")
	assert.ErrorContains(t, applySetting(&s, "index.backend", "redis"), "unknown index backend")
}

func TestKeyedRooms(t *testing.T) {
	assert.Equal(t, []string{"!a", "!b"}, keyedRooms([]string{"!b=k1==", "!a=k2"}))
	assert.Equal(t, []string{"(malformed entry)"}, keyedRooms([]string{"garbage"}))
	assert.Empty(t, keyedRooms(nil))
}
