// Package mcp exposes message search to AI assistants over the
// Model Context Protocol.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
