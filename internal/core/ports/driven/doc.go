// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - EventStore: Room timelines owned by the search engine (memory or SQLite)
//   - SearchIndex: Inverted token index over event bodies (memory or bleve)
//   - RoomDirectory: Rooms joined by the session
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Decryptor: Local decryption of encrypted events. Without it, encrypted
//     events stay unsearchable until the body is delivered via OnDecrypted.
//   - ProfileStore: Sender profiles. Without it, results carry no profile.
//
// ProfileWriter and RoomJoiner are only needed by the importer.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
