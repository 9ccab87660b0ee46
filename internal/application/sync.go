package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"vn.io.arda/reminder/internal/domain"
)

// MsgNoItems is the SyncResult.Error reported when the authoritative item
// list is empty.
const MsgNoItems = "no items found"

// Sync reconciles the store with items, the complete list of owner's active
// items: notifications for items missing from the list are cancelled, then
// every item is rescheduled. An empty owner reconciles the whole store.
//
// An empty item list still purges the owner's notifications before
// reporting MsgNoItems.
func (s *Service) Sync(ctx context.Context, owner string, items []domain.Item) SyncResult {
	started := time.Now()
	res := SyncResult{RunID: uuid.NewString()}
	logger := log.With().Str("run_id", res.RunID).Str("owner", owner).Logger()

	active := make(map[string]struct{}, len(items))
	for _, it := range items {
		active[it.Name] = struct{}{}
	}

	listed := true
	scheduled, err := s.store.List(ctx, owner)
	if err != nil {
		listed = false
		logger.Error().Err(err).Msg("failed to list scheduled notifications, skipping orphan removal")
		res.Error = fmt.Sprintf("list scheduled notifications: %v", err)
	}
	for _, n := range scheduled {
		key, ok := n.Key()
		if !ok {
			continue
		}
		if _, keep := active[key.ItemName]; keep {
			continue
		}
		if s.cancel(ctx, n) {
			res.Cancelled++
		}
	}

	if len(items) == 0 {
		res.Error = MsgNoItems
		logger.Warn().Int("orphans_cancelled", res.Cancelled).Msg("sync found no items")
		s.metrics.ObserveSync("empty", time.Since(started))
		return res
	}

	bulk := s.ScheduleForAll(ctx, items)
	res.Synchronized = bulk.Success
	res.Failures = bulk.Failures
	res.Success = listed
	if bulk.Failed > 0 && res.Error == "" {
		res.Error = fmt.Sprintf("%d of %d items not scheduled", bulk.Failed, len(items))
	}

	result := "ok"
	if !res.Success {
		result = "failed"
	}
	s.metrics.ObserveSync(result, time.Since(started))

	logger.Info().
		Int("items", len(items)).
		Int("synchronized", res.Synchronized).
		Int("orphans_cancelled", res.Cancelled).
		Int("failed", bulk.Failed).
		Msg("notification sync completed")
	return res
}

// SyncUser runs a full pass for an authenticated owner: permission check,
// per-owner lock, item fetch, then Sync.
func (s *Service) SyncUser(ctx context.Context, owner string) SyncResult {
	if owner == "" {
		return SyncResult{Error: "no authenticated user"}
	}
	if !s.HasPermission(ctx, owner) {
		log.Info().Str("owner", owner).Msg("notification permission not granted, sync skipped")
		s.metrics.ObserveSync("skipped", 0)
		return SyncResult{Skipped: true, Error: "notification permission not granted"}
	}

	unlock, err := s.locker.TryLock(ctx, owner)
	switch {
	case errors.Is(err, domain.ErrSyncInProgress):
		log.Info().Str("owner", owner).Msg("sync already running for owner, skipped")
		return SyncResult{Skipped: true, Error: err.Error()}
	case err != nil:
		// The lock only avoids duplicate work; run without it.
		log.Warn().Err(err).Str("owner", owner).Msg("sync lock unavailable, continuing unlocked")
	default:
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				log.Warn().Err(err).Str("owner", owner).Msg("failed to release sync lock")
			}
		}()
	}

	items, err := s.items.ListByOwner(ctx, owner)
	if err != nil {
		log.Error().Err(err).Str("owner", owner).Msg("failed to fetch active items")
		return SyncResult{Error: fmt.Sprintf("fetch items: %v", err)}
	}
	return s.Sync(ctx, owner, items)
}

// ResyncAll runs SyncUser for every owner with active items. Called by a
// background ticker so that failed schedules converge eventually.
func (s *Service) ResyncAll(ctx context.Context) {
	owners, err := s.items.Owners(ctx)
	if err != nil {
		log.Error().Err(err).Msg("periodic resync: failed to list owners")
		return
	}

	synced, skipped, failed := 0, 0, 0
	for _, owner := range owners {
		if ctx.Err() != nil {
			break
		}
		res := s.SyncUser(ctx, owner)
		switch {
		case res.Skipped:
			skipped++
		case res.Success:
			synced++
		default:
			failed++
		}
	}
	log.Info().
		Int("owners", len(owners)).
		Int("synced", synced).
		Int("skipped", skipped).
		Int("failed", failed).
		Msg("periodic resync completed")
}
