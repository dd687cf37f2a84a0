// Package memory provides an in-process implementation of driven.SearchIndex.
//
// Each room owns an inverted index from token to the events containing it,
// a sorted term list used for prefix range scans, and a bloom filter that
// rejects exact-token lookups for tokens the room has never seen. A reverse
// map from event to its token counts makes removal and re-indexing exact.
//
// # Thread Safety
//
// A single RWMutex guards all state. Mutations take the write lock for the
// whole per-event update, so readers never see a half-applied event.
// Tokenization runs before the lock is taken.
package memory
