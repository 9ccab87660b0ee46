// Package dispatch fires due notifications: it removes them from the store,
// as the OS does once a notification has been shown, and pushes them to the
// owner's connected clients.
package dispatch

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"vn.io.arda/reminder/internal/domain"
	"vn.io.arda/reminder/internal/metrics"
)

// Store is a notification store able to list due entries.
type Store interface {
	domain.NotificationStore
	domain.DueSource
}

// Broadcaster delivers a fired notification to the owner's clients.
// Implementation lives in transport/http/sse_hub.go.
type Broadcaster interface {
	Broadcast(owner string, n domain.ScheduledNotification)
}

// Dispatcher moves due notifications from the store to the broadcaster.
type Dispatcher struct {
	store   Store
	hub     Broadcaster
	metrics *metrics.Metrics
	now     func() time.Time
}

// New creates a Dispatcher.
func New(store Store, hub Broadcaster, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{store: store, hub: hub, metrics: m, now: time.Now}
}

// Tick fires every notification due at the current time and returns how
// many were delivered.
func (d *Dispatcher) Tick(ctx context.Context) int {
	due, err := d.store.Due(ctx, d.now())
	if err != nil {
		log.Error().Err(err).Msg("dispatch: failed to list due notifications")
		return 0
	}

	fired := 0
	for _, n := range due {
		// Remove first so that a crash never delivers the same entry twice.
		// Only the listed generation is removed: a reschedule in between wins.
		removed, err := d.store.CancelIfDue(ctx, n.Identifier, n.TriggerAt)
		if err != nil {
			log.Error().Err(err).Str("identifier", n.Identifier).Msg("dispatch: failed to remove fired notification")
			continue
		}
		if !removed {
			log.Debug().Str("identifier", n.Identifier).Msg("dispatch: notification rescheduled or cancelled, not firing")
			continue
		}
		owner := n.Owner()
		if owner != "" {
			d.hub.Broadcast(owner, n)
		}
		d.metrics.IncFired()
		fired++
		log.Debug().Str("identifier", n.Identifier).Str("owner", owner).Msg("notification fired")
	}
	return fired
}

// Run calls Tick every interval until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			d.Tick(ctx)
		case <-ctx.Done():
			return
		}
	}
}
