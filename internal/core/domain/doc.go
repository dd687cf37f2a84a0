// Package domain defines the core business entities for Sercha Chat.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Event: An immutable room timeline record with an optional searchable body
//   - Profile: A sender's display name and avatar as seen in a room
//   - Token: A normalised search term, optionally matched by prefix
//   - Posting: An index hit for one event
//   - SearchQuery / SearchResult: The request and response of a message search
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
