package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-chat/internal/logger"
	"github.com/custodia-labs/sercha-chat/internal/tokenizer"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// pageRequest is a validated query with its limits resolved.
type pageRequest struct {
	tokens      []domain.Token
	order       domain.SearchOrder
	fingerprint string
	limit       int
	before      int
	after       int
	resumeAfter *domain.OrderKey
}

// SearchService answers message searches over joined rooms.
// It holds no state between calls; paging is carried by the cursor.
type SearchService struct {
	events    driven.EventStore
	rooms     driven.RoomDirectory
	matcher   *Matcher
	assembler *ContextAssembler
	enricher  *ProfileEnricher
	timeline  driving.TimelineService

	mu       sync.RWMutex
	settings domain.SearchSettings
}

// NewSearchService creates a new search service.
// The profiles parameter is optional (can be nil).
func NewSearchService(
	index driven.SearchIndex,
	events driven.EventStore,
	profiles driven.ProfileStore,
	rooms driven.RoomDirectory,
	settings domain.SearchSettings,
) *SearchService {
	return &SearchService{
		events:    events,
		rooms:     rooms,
		matcher:   NewMatcher(index),
		assembler: NewContextAssembler(events),
		enricher:  NewProfileEnricher(profiles),
		settings:  normaliseSearchSettings(settings),
	}
}

// SetTimeline enables lazy decryption: pending events in the searched
// rooms get another decryption attempt before matching.
func (s *SearchService) SetTimeline(timeline driving.TimelineService) {
	s.timeline = timeline
}

// ApplySettings replaces the limits used by subsequent searches.
func (s *SearchService) ApplySettings(settings domain.SearchSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = normaliseSearchSettings(settings)
}

// Search returns one page of events matching the query.
func (s *SearchService) Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchResult, error) {
	logger.Section("Message Search")
	logger.Debug("Term: %q room: %q order: %s", query.Term, query.RoomID, query.Order())

	req, err := s.prepare(query)
	if err != nil {
		return nil, err
	}

	roomIDs, err := s.scope(ctx, query.RoomID)
	if err != nil {
		return nil, err
	}

	if s.timeline != nil {
		if n, err := s.timeline.RetryDecryption(ctx, roomIDs); err != nil {
			logger.Warn("Decryption retry failed: %v", err)
		} else if n > 0 {
			logger.Debug("Decrypted %d pending events", n)
		}
	}

	candidates, err := s.matcher.Match(ctx, req.tokens, roomIDs)
	if err != nil {
		return nil, fmt.Errorf("matching: %w", err)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return req.order.Less(orderKey(candidates[i]), orderKey(candidates[j]))
	})
	logger.Debug("Matched %d events in %d rooms", len(candidates), len(roomIDs))

	start := 0
	if req.resumeAfter != nil {
		resume := *req.resumeAfter
		start = sort.Search(len(candidates), func(i int) bool {
			return req.order.Less(resume, orderKey(candidates[i]))
		})
	}
	end := min(start+req.limit, len(candidates))
	page := candidates[start:end]

	items, err := s.assemble(ctx, req, page, query.IncludeProfile)
	if err != nil {
		return nil, err
	}

	result := &domain.SearchResult{
		Items:      items,
		Count:      len(candidates),
		Highlights: highlights(items, req.tokens),
	}

	if end < len(candidates) {
		next, err := encodeCursor(req.order, req.fingerprint, orderKey(page[len(page)-1]))
		if err != nil {
			return nil, err
		}
		result.NextBatch = next
	}

	logger.Debug("Returning %d items (more: %t)", len(items), result.NextBatch != "")
	return result, nil
}

// prepare validates the query shape and resolves limits.
func (s *SearchService) prepare(query domain.SearchQuery) (*pageRequest, error) {
	tokens, err := tokenizer.ParseQuery(query.Term)
	if err != nil {
		return nil, err
	}

	switch {
	case query.Limit < 0:
		return nil, fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidQuery)
	case query.BeforeLimit < 0:
		return nil, fmt.Errorf("%w: before limit must not be negative", domain.ErrInvalidQuery)
	case query.AfterLimit < 0:
		return nil, fmt.Errorf("%w: after limit must not be negative", domain.ErrInvalidQuery)
	}

	s.mu.RLock()
	settings := s.settings
	s.mu.RUnlock()

	req := &pageRequest{
		tokens:      tokens,
		order:       query.Order(),
		fingerprint: queryFingerprint(tokens, query.RoomID),
		limit:       query.Limit,
		before:      min(query.BeforeLimit, settings.MaxContext),
		after:       min(query.AfterLimit, settings.MaxContext),
	}
	if req.limit == 0 {
		req.limit = settings.DefaultLimit
	}
	req.limit = min(req.limit, settings.MaxLimit)

	if query.NextBatch != "" {
		key, err := decodeCursor(query.NextBatch, req.order, req.fingerprint)
		if err != nil {
			return nil, err
		}
		req.resumeAfter = &key
	}

	return req, nil
}

// scope returns the rooms a search covers.
func (s *SearchService) scope(ctx context.Context, roomID string) ([]string, error) {
	joined, err := s.rooms.JoinedRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: joined rooms: %v", domain.ErrCollaboratorUnavailable, err)
	}
	if roomID == "" {
		return joined, nil
	}
	if !slices.Contains(joined, roomID) {
		return nil, fmt.Errorf("%w: %s", domain.ErrRoomNotFound, roomID)
	}
	return []string{roomID}, nil
}

// assemble hydrates a page of postings into result items. Context and
// profile fetches for different items run concurrently; their failures
// leave the field nil. Events that vanished since matching are dropped.
func (s *SearchService) assemble(
	ctx context.Context, req *pageRequest, page []domain.Posting, includeProfile bool,
) ([]domain.SearchResultItem, error) {
	s.mu.RLock()
	concurrency := s.settings.Concurrency
	s.mu.RUnlock()

	slots := make([]*domain.SearchResultItem, len(page))

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, p := range page {
		g.Go(func() error {
			event, err := s.events.GetEvent(ctx, p.EventID)
			if errors.Is(err, domain.ErrNotFound) {
				logger.Debug("Event %s vanished, skipping", p.EventID)
				return nil
			}
			if err != nil {
				return fmt.Errorf("loading event %s: %w", p.EventID, err)
			}
			if !event.Searchable() {
				return nil
			}

			item := &domain.SearchResultItem{Event: *event, Rank: p.Hits}

			evCtx, err := s.assembler.Assemble(ctx, *event, req.before, req.after)
			if err != nil {
				logger.Warn("Context for %s unavailable: %v", event.ID, err)
			} else {
				item.Context = evCtx
			}

			if includeProfile {
				profile, err := s.enricher.Enrich(ctx, *event)
				if err != nil {
					logger.Warn("Profile for %s unavailable: %v", event.Sender, err)
				}
				item.Profile = profile
			}

			slots[i] = item
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// An abandoned request returns nothing rather than a partial page.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := make([]domain.SearchResultItem, 0, len(page))
	for _, item := range slots {
		if item != nil {
			items = append(items, *item)
		}
	}
	return items, nil
}

// highlights returns the distinct body words on the page that satisfy
// a query token, sorted.
func highlights(items []domain.SearchResultItem, tokens []domain.Token) []string {
	seen := make(map[string]struct{})
	for _, item := range items {
		for _, word := range tokenizer.Tokenize(item.Event.Body) {
			if _, ok := seen[word]; ok {
				continue
			}
			for _, tok := range tokens {
				if tokenizer.Matches(tok, word) {
					seen[word] = struct{}{}
					break
				}
			}
		}
	}

	out := make([]string, 0, len(seen))
	for word := range seen {
		out = append(out, word)
	}
	sort.Strings(out)
	return out
}

func orderKey(p domain.Posting) domain.OrderKey {
	return domain.OrderKey{Rank: p.Hits, Timestamp: p.Timestamp, EventID: p.EventID}
}

// normaliseSearchSettings fills unset fields from the defaults.
func normaliseSearchSettings(settings domain.SearchSettings) domain.SearchSettings {
	defaults := domain.DefaultAppSettings().Search
	if settings.MaxLimit <= 0 {
		settings.MaxLimit = defaults.MaxLimit
	}
	if settings.DefaultLimit <= 0 {
		settings.DefaultLimit = defaults.DefaultLimit
	}
	settings.DefaultLimit = min(settings.DefaultLimit, settings.MaxLimit)
	if settings.MaxContext <= 0 {
		settings.MaxContext = defaults.MaxContext
	}
	if settings.Concurrency <= 0 {
		settings.Concurrency = defaults.Concurrency
	}
	return settings
}
