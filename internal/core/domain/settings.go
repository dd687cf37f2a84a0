package domain

const unknownDescription = "Unknown"

// IndexBackend selects the search index implementation.
type IndexBackend string

// Available index backends.
const (
	// IndexBackendMemory is the in-process inverted index, rebuilt at startup.
	IndexBackendMemory IndexBackend = "memory"

	// IndexBackendBleve is a persistent bleve index on disk.
	IndexBackendBleve IndexBackend = "bleve"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	return b == IndexBackendMemory || b == IndexBackendBleve
}

// String returns the string representation.
func (b IndexBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b IndexBackend) Description() string {
	switch b {
	case IndexBackendMemory:
		return "In-memory inverted index"
	case IndexBackendBleve:
		return "Persistent bleve index"
	default:
		return unknownDescription
	}
}

// SearchSettings holds search behaviour configuration.
type SearchSettings struct {
	// DefaultLimit is the page size used when a query sets none.
	DefaultLimit int

	// MaxLimit caps the page size.
	MaxLimit int

	// MaxContext caps the before and after context sizes.
	MaxContext int

	// Concurrency bounds concurrent per-result enrichment fetches.
	Concurrency int
}

// IndexSettings holds search index configuration.
type IndexSettings struct {
	// Backend is the index implementation.
	Backend IndexBackend

	// BloomCapacity sizes the per-room token filters of the memory index.
	BloomCapacity int
}

// ProfileSettings holds profile lookup configuration.
type ProfileSettings struct {
	// LookupRate limits profile lookups per second. Zero disables throttling.
	LookupRate float64
}

// CryptoSettings holds local decryption configuration.
type CryptoSettings struct {
	// RoomKeys are "roomID=base64key" entries for the keyring.
	RoomKeys []string
}

// AppSettings aggregates all application settings.
type AppSettings struct {
	Search  SearchSettings
	Index   IndexSettings
	Profile ProfileSettings
	Crypto  CryptoSettings
}

// DefaultAppSettings returns the settings used when nothing is configured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Search: SearchSettings{
			DefaultLimit: 10,
			MaxLimit:     100,
			MaxContext:   50,
			Concurrency:  8,
		},
		Index: IndexSettings{
			Backend:       IndexBackendMemory,
			BloomCapacity: 4096,
		},
	}
}
