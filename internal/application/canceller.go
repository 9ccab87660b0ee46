package application

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"vn.io.arda/reminder/internal/domain"
)

// CancelForItem removes every notification of itemName. With an empty owner
// the notifications of all owners are removed. Missing entries and store
// errors are logged, never returned.
func (s *Service) CancelForItem(ctx context.Context, itemName, owner string) {
	_, _ = s.cancelForItem(ctx, itemName, owner)
}

// cancelForItem returns the number of entries removed and an error when the
// store could not be listed or an entry could not be removed, in which case
// older notifications of the item may still be scheduled.
func (s *Service) cancelForItem(ctx context.Context, itemName, owner string) (int, error) {
	scheduled, err := s.store.List(ctx, owner)
	if err != nil {
		log.Error().Err(err).Str("item", itemName).Str("owner", owner).Msg("failed to list scheduled notifications")
		return 0, fmt.Errorf("list scheduled notifications: %w", err)
	}

	cancelled, failed := 0, 0
	for _, n := range scheduled {
		key, ok := n.Key()
		if !ok || !key.Matches(itemName, owner) {
			continue
		}
		if s.cancel(ctx, n) {
			cancelled++
		} else {
			failed++
		}
	}

	if failed > 0 {
		return cancelled, fmt.Errorf("%d notifications of %q not cancelled", failed, itemName)
	}
	if cancelled == 0 {
		log.Debug().Str("item", itemName).Str("owner", owner).Msg("no notifications found for item")
	}
	return cancelled, nil
}

// CancelAll removes every notification of owner, or of everybody when owner
// is empty. Returns the number removed.
func (s *Service) CancelAll(ctx context.Context, owner string) int {
	scheduled, err := s.store.List(ctx, owner)
	if err != nil {
		log.Error().Err(err).Str("owner", owner).Msg("failed to list scheduled notifications")
		return 0
	}
	cancelled := 0
	for _, n := range scheduled {
		if s.cancel(ctx, n) {
			cancelled++
		}
	}
	log.Info().Str("owner", owner).Int("cancelled", cancelled).Msg("all notifications cancelled")
	return cancelled
}

// ListScheduled returns the notifications currently scheduled for owner.
func (s *Service) ListScheduled(ctx context.Context, owner string) ([]domain.ScheduledNotification, error) {
	return s.store.List(ctx, owner)
}

func (s *Service) cancel(ctx context.Context, n domain.ScheduledNotification) bool {
	if err := s.store.Cancel(ctx, n.Identifier); err != nil {
		log.Error().Err(err).Str("identifier", n.Identifier).Msg("failed to cancel notification")
		return false
	}
	s.metrics.AddCancelled(1)
	log.Debug().Str("identifier", n.Identifier).Msg("notification cancelled")
	return true
}
