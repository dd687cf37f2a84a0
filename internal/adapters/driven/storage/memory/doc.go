// Package memory provides in-memory implementations of the storage ports.
//
// These adapters back tests and ephemeral sessions:
//
//   - EventStore: Room timelines kept sorted by timestamp, then event ID
//   - ProfileStore: Sender profiles keyed by user and room
//   - RoomDirectory: The set of joined rooms
//   - ConfigStore: Configuration values
//
// All stores are safe for concurrent use.
package memory
