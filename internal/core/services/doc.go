// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The search pipeline is split into small parts that the SearchService
// composes: a Matcher over the index, a ContextAssembler over the event
// store, a ProfileEnricher over the profile store, and an opaque cursor
// codec for stateless paging. The TimelineService keeps the index in
// step with the event store as events arrive, decrypt or get redacted.
package services
