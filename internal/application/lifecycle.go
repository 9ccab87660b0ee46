package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"vn.io.arda/reminder/internal/domain"
)

// HandleEvent applies an item lifecycle or session event.
//
//   - activate, renew, edit-duration: cancel and reschedule the item
//   - deactivate: cancel the item's notifications
//   - sign-in: full sync; sign-out: cancel everything of the owner
//
// Scheduling is skipped when the owner has not granted permission. Errors are
// returned only for malformed events or item lookups.
func (s *Service) HandleEvent(ctx context.Context, ev domain.Event) (EventOutcome, error) {
	out := EventOutcome{Type: ev.Type}

	owner := ev.Owner
	name := ev.ItemName
	if ev.Item != nil {
		if owner == "" {
			owner = ev.Item.Owner
		}
		if name == "" {
			name = ev.Item.Name
		}
	}
	if owner == "" {
		return out, errors.New("event without owner")
	}

	switch ev.Type {
	case domain.EventItemDeactivated:
		if name == "" {
			return out, errors.New("deactivation without item name")
		}
		n, err := s.cancelForItem(ctx, name, owner)
		out.Cancelled = n
		if err != nil {
			out.Reason = ReasonStoreError
		}

	case domain.EventItemActivated, domain.EventItemRenewed, domain.EventItemDurationUpdated:
		if name == "" {
			return out, errors.New("item event without item name")
		}
		if !s.HasPermission(ctx, owner) {
			out.Skipped = true
			out.Reason = "notification permission not granted"
			return out, nil
		}
		item, err := s.resolveItem(ctx, ev, owner, name)
		if err != nil {
			return out, err
		}
		out.Scheduled, out.Reason = s.scheduleItem(ctx, *item)

	case domain.EventUserSignedIn:
		res := s.SyncUser(ctx, owner)
		out.Sync = &res
		out.Skipped = res.Skipped

	case domain.EventUserSignedOut:
		out.Cancelled = s.CancelAll(ctx, owner)

	default:
		return out, fmt.Errorf("unsupported event type %q", ev.Type)
	}

	log.Info().
		Str("event", string(ev.Type)).
		Str("event_id", ev.EventID).
		Str("owner", owner).
		Str("item", name).
		Bool("scheduled", out.Scheduled).
		Int("cancelled", out.Cancelled).
		Msg("event handled")
	return out, nil
}

// resolveItem prefers the item carried by the event and falls back to the
// item store when the event lacks an expiry.
func (s *Service) resolveItem(ctx context.Context, ev domain.Event, owner, name string) (*domain.Item, error) {
	item := ev.Item
	if item == nil || !item.HasExpiry() {
		fetched, err := s.items.Get(ctx, owner, name)
		if err != nil {
			return nil, fmt.Errorf("get item %q: %w", name, err)
		}
		item = fetched
	}
	resolved := *item
	if resolved.Owner == "" {
		resolved.Owner = owner
	}
	if err := resolved.Validate(); err != nil {
		return nil, err
	}
	return &resolved, nil
}
