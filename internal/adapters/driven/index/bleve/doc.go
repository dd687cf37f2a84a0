// Package bleve provides a persistent driven.SearchIndex backed by bleve.
//
// Event bodies are tokenized with the shared tokenizer before they reach
// bleve, and stored as a keyword-analyzed string array. Exact tokens map to
// term queries and prefix tokens to prefix queries over that field, so the
// matching rules are identical to the in-memory index. Room scoping is a
// disjunction of term queries over the keyword "room" field.
//
// # Data Location
//
// By default, the index is stored at ~/.sercha-chat/data/index.bleve.
// An empty path opens a memory-only index.
package bleve
