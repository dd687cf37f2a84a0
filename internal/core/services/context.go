package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driven"
)

// ContextAssembler fetches the timeline around a matched event.
type ContextAssembler struct {
	events driven.EventStore
}

// NewContextAssembler creates an assembler reading from events.
func NewContextAssembler(events driven.EventStore) *ContextAssembler {
	return &ContextAssembler{events: events}
}

// Assemble returns up to before preceding and after following events of
// event, each oldest first. Shorter windows mean the timeline ends there.
// Store failures wrap domain.ErrCollaboratorUnavailable.
func (a *ContextAssembler) Assemble(ctx context.Context, event domain.Event, before, after int) (*domain.EventContext, error) {
	out := &domain.EventContext{
		Before: []domain.Event{},
		After:  []domain.Event{},
	}
	if before <= 0 && after <= 0 {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if before > 0 {
		g.Go(func() error {
			events, err := a.events.EventsBefore(gctx, event.ID, event.RoomID, before)
			if err != nil {
				return fmt.Errorf("%w: events before %s: %v", domain.ErrCollaboratorUnavailable, event.ID, err)
			}
			out.Before = append(out.Before, events...)
			return nil
		})
	}
	if after > 0 {
		g.Go(func() error {
			events, err := a.events.EventsAfter(gctx, event.ID, event.RoomID, after)
			if err != nil {
				return fmt.Errorf("%w: events after %s: %v", domain.ErrCollaboratorUnavailable, event.ID, err)
			}
			out.After = append(out.After, events...)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
