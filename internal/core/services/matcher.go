package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driven"
)

// Matcher resolves query tokens to the events containing all of them.
type Matcher struct {
	index driven.SearchIndex
}

// NewMatcher creates a matcher over index.
func NewMatcher(index driven.SearchIndex) *Matcher {
	return &Matcher{index: index}
}

// Match returns one posting per event that contains every token, limited
// to roomIDs. Hits on the returned postings is the sum over all tokens,
// which is the relevance rank. The order of the result is unspecified.
func (m *Matcher) Match(ctx context.Context, tokens []domain.Token, roomIDs []string) ([]domain.Posting, error) {
	if len(tokens) == 0 || len(roomIDs) == 0 {
		return nil, nil
	}

	// Exact tokens usually have short posting lists; start with them so
	// the intersection shrinks early.
	ordered := make([]domain.Token, len(tokens))
	copy(ordered, tokens)
	sort.SliceStable(ordered, func(i, j int) bool {
		return !ordered[i].Prefix && ordered[j].Prefix
	})

	var acc map[string]domain.Posting
	for i, tok := range ordered {
		postings, err := m.index.Lookup(ctx, tok, roomIDs)
		if err != nil {
			return nil, fmt.Errorf("lookup %q: %w", tok.Text, err)
		}

		if i == 0 {
			acc = make(map[string]domain.Posting, len(postings))
			for _, p := range postings {
				acc[p.EventID] = p
			}
		} else {
			next := make(map[string]domain.Posting, min(len(acc), len(postings)))
			for _, p := range postings {
				if prev, ok := acc[p.EventID]; ok {
					prev.Hits += p.Hits
					next[p.EventID] = prev
				}
			}
			acc = next
		}

		if len(acc) == 0 {
			return nil, nil
		}
	}

	out := make([]domain.Posting, 0, len(acc))
	for _, p := range acc {
		out = append(out, p)
	}
	return out, nil
}
