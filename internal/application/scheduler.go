package application

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"vn.io.arda/reminder/internal/domain"
	"vn.io.arda/reminder/internal/messages"
)

// ScheduleForItem replaces the notifications of item with a fresh reminder
// and expiry pair. It is idempotent and never fails loudly: it returns false
// when nothing was scheduled (already expired, invalid item, store error).
func (s *Service) ScheduleForItem(ctx context.Context, item domain.Item) bool {
	ok, _ := s.scheduleItem(ctx, item)
	return ok
}

// scheduleItem returns whether at least one notification was scheduled and,
// if not, the reason.
func (s *Service) scheduleItem(ctx context.Context, item domain.Item) (bool, string) {
	if item.Name == "" || item.Owner == "" {
		log.Warn().Str("item", item.Name).Str("owner", item.Owner).Msg("item without name or owner, not scheduling")
		s.metrics.IncFailure(ReasonInvalidItem)
		return false, ReasonInvalidItem
	}

	// Cancellation completes before anything new is created, so the store
	// never holds two generations for the same item.
	if _, err := s.cancelForItem(ctx, item.Name, item.Owner); err != nil {
		log.Error().Err(err).Str("item", item.Name).Str("owner", item.Owner).Msg("previous notifications not cleared, not scheduling")
		s.metrics.IncFailure(ReasonStoreError)
		return false, fmt.Sprintf("%s: %v", ReasonStoreError, err)
	}

	now := s.now()
	if !item.ExpiredAt.After(now) {
		log.Warn().
			Str("item", item.Name).
			Str("owner", item.Owner).
			Time("expired_at", item.ExpiredAt).
			Msg("item already expired, no notification scheduled")
		s.metrics.IncFailure(ReasonExpired)
		return false, ReasonExpired
	}

	var reminderID string
	reminderAt := item.ExpiredAt.AddDate(0, 0, -s.leadDays)
	if reminderAt.After(now) {
		n := s.buildNotification(domain.KindReminder, item)
		n.TriggerAt = reminderAt
		if err := s.store.Schedule(ctx, n); err != nil {
			return s.scheduleFailed(err, item, n)
		}
		reminderID = n.Identifier
		s.metrics.IncScheduled(string(domain.KindReminder))
	}

	n := s.buildNotification(domain.KindExpiry, item)
	n.TriggerAt = item.ExpiredAt
	if err := s.store.Schedule(ctx, n); err != nil {
		if reminderID != "" {
			// Leave nothing half-scheduled behind a false result.
			if cerr := s.store.Cancel(ctx, reminderID); cerr != nil {
				log.Error().Err(cerr).Str("identifier", reminderID).Msg("failed to roll back reminder")
			}
		}
		return s.scheduleFailed(err, item, n)
	}
	s.metrics.IncScheduled(string(domain.KindExpiry))

	log.Debug().
		Str("item", item.Name).
		Str("owner", item.Owner).
		Bool("reminder", reminderID != "").
		Time("expired_at", item.ExpiredAt).
		Msg("notifications scheduled")
	return true, ""
}

func (s *Service) scheduleFailed(err error, item domain.Item, n domain.ScheduledNotification) (bool, string) {
	log.Error().Err(err).
		Str("item", item.Name).
		Str("owner", item.Owner).
		Str("identifier", n.Identifier).
		Msg("failed to schedule notification")
	s.metrics.IncFailure(ReasonStoreError)
	return false, fmt.Sprintf("%s: %v", ReasonStoreError, err)
}

func (s *Service) buildNotification(kind domain.Kind, item domain.Item) domain.ScheduledNotification {
	key := domain.Key{Kind: kind, ItemName: item.Name, Owner: item.Owner}
	payload := &domain.Payload{Kind: kind, ItemName: item.Name, Owner: item.Owner}

	var content domain.Content
	switch kind {
	case domain.KindReminder:
		content.Title, content.Body = messages.Reminder(s.locale, item.Name)
		content.Channel = ChannelReminders
		content.Category = CategoryReminder
		payload.DaysUntilExpiry = s.leadDays
	default:
		content.Title, content.Body = messages.Expiry(s.locale, item.Name)
		content.Channel = ChannelExpiry
		content.Category = CategoryExpiry
	}
	content.Sound = defaultSound
	content.Data = payload

	return domain.ScheduledNotification{Identifier: key.Identifier(), Content: content}
}
