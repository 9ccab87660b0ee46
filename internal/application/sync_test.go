package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vn.io.arda/reminder/internal/application"
	"vn.io.arda/reminder/internal/domain"
	"vn.io.arda/reminder/internal/infrastructure/memory"
)

func TestSync_RemovesOrphans(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := newItem("A", "u1", 30, 30*day)
	b := newItem("B", "u1", 30, 30*day)
	c := newItem("C", "u1", 30, 30*day)
	f.svc.ScheduleForAll(ctx, []domain.Item{a, b, c})
	require.Equal(t, 6, f.store.Len())

	res := f.svc.Sync(ctx, "u1", []domain.Item{a, c})

	assert.True(t, res.Success)
	assert.Equal(t, 2, res.Synchronized)
	assert.Equal(t, 2, res.Cancelled)
	assert.Empty(t, res.Error)
	assert.NotEmpty(t, res.RunID)
	assert.Empty(t, f.entriesFor(t, "B", "u1"))
	assert.Len(t, f.entriesFor(t, "A", "u1"), 2)
	assert.Len(t, f.entriesFor(t, "C", "u1"), 2)
}

func TestSync_SchedulesMissingItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := newItem("A", "u1", 30, 30*day)
	require.True(t, f.svc.ScheduleForItem(ctx, a))

	res := f.svc.Sync(ctx, "u1", []domain.Item{a, newItem("B", "u1", 3, 3*day)})

	assert.True(t, res.Success)
	assert.Equal(t, 2, res.Synchronized)
	assert.Zero(t, res.Cancelled)
	assert.Len(t, f.entriesFor(t, "B", "u1"), 1)
	assert.Equal(t, 3, f.store.Len())
}

func TestSync_LeavesOtherOwnersAlone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.True(t, f.svc.ScheduleForItem(ctx, newItem("B", "u2", 30, 30*day)))

	f.svc.Sync(ctx, "u1", []domain.Item{newItem("A", "u1", 30, 30*day)})

	assert.Len(t, f.entriesFor(t, "B", "u2"), 2)
}

func TestSync_ParsesLegacyIdentifiers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	keep := newItem("filtro_acqua", "u1", 30, 30*day)
	legacy := []string{"reminder_filtro_acqua_u1", "expiry_vecchio_filtro_u1"}
	for _, id := range append(legacy, "promo_banner") {
		require.NoError(t, f.store.Schedule(ctx, domain.ScheduledNotification{Identifier: id, TriggerAt: testNow.Add(day)}))
	}

	res := f.svc.Sync(ctx, "", []domain.Item{keep})

	assert.Equal(t, 1, res.Cancelled)
	ids := map[string]bool{}
	all, _ := f.store.List(ctx, "")
	for _, n := range all {
		ids[n.Identifier] = true
	}
	assert.False(t, ids["expiry_vecchio_filtro_u1"], "orphan with underscore name should be removed")
	assert.True(t, ids["promo_banner"], "foreign identifier must be left untouched")
	assert.True(t, ids["expiry_filtro_acqua_u1"])
}

func TestSync_EmptyListPurgesAndReportsError(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.svc.ScheduleForAll(ctx, []domain.Item{newItem("A", "u1", 30, 30*day), newItem("B", "u1", 30, 30*day)})

	res := f.svc.Sync(ctx, "u1", nil)

	assert.False(t, res.Success)
	assert.Zero(t, res.Synchronized)
	assert.Equal(t, application.MsgNoItems, res.Error)
	assert.Equal(t, 4, res.Cancelled)
	assert.Equal(t, 0, f.store.Len())
}

func TestSync_ReportsFailuresWithoutFailing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res := f.svc.Sync(ctx, "u1", []domain.Item{newItem("A", "u1", 30, 30*day), newItem("Old", "u1", 30, -day)})

	assert.True(t, res.Success)
	assert.Equal(t, 1, res.Synchronized)
	assert.Equal(t, "1 of 2 items not scheduled", res.Error)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "Old", res.Failures[0].ItemName)
}

func TestSync_ListFailureSchedulesNothing(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: memory.NewStore(), failList: true}
	svc := application.NewService(store, memory.NewItems(), memory.NewPermissions(domain.PermissionGranted),
		application.WithClock(func() time.Time { return testNow }))

	res := svc.Sync(ctx, "u1", []domain.Item{newItem("A", "u1", 30, 30*day)})

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "list scheduled notifications")
	// The scheduler cannot clear older generations either, so it backs off.
	assert.Equal(t, 0, res.Synchronized)
	require.Len(t, res.Failures, 1)
	assert.Contains(t, res.Failures[0].Reason, application.ReasonStoreError)
	assert.Equal(t, 0, store.Len())
}

func TestSyncUser_FetchesItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.items.Put(newItem("A", "u1", 30, 30*day))
	f.items.Put(newItem("B", "u1", 30, 30*day))
	require.NoError(t, f.store.Schedule(ctx, domain.ScheduledNotification{
		Identifier: "expiry_Gone_u1",
		TriggerAt:  testNow.Add(day),
	}))

	res := f.svc.SyncUser(ctx, "u1")

	assert.True(t, res.Success)
	assert.Equal(t, 2, res.Synchronized)
	assert.Equal(t, 1, res.Cancelled)
	assert.Equal(t, 4, f.store.Len())
}

func TestSyncUser_SkipsWithoutPermission(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.items.Put(newItem("A", "u1", 30, 30*day))
	require.NoError(t, f.perms.SetStatus(ctx, "u1", domain.PermissionDenied))

	res := f.svc.SyncUser(ctx, "u1")

	assert.True(t, res.Skipped)
	assert.False(t, res.Success)
	assert.Equal(t, 0, f.store.Len())
}

func TestSyncUser_RequiresIdentity(t *testing.T) {
	f := newFixture(t)
	res := f.svc.SyncUser(context.Background(), "")
	assert.False(t, res.Success)
	assert.Equal(t, "no authenticated user", res.Error)
}

type busyLocker struct{ err error }

func (l busyLocker) TryLock(context.Context, string) (func(context.Context) error, error) {
	return nil, l.err
}

func TestSyncUser_LockHeld(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, application.WithLocker(busyLocker{err: domain.ErrSyncInProgress}))
	f.items.Put(newItem("A", "u1", 30, 30*day))

	res := f.svc.SyncUser(ctx, "u1")

	assert.True(t, res.Skipped)
	assert.Equal(t, 0, f.store.Len())
}

func TestSyncUser_LockBackendDownRunsUnlocked(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, application.WithLocker(busyLocker{err: errors.New("redis down")}))
	f.items.Put(newItem("A", "u1", 30, 30*day))

	res := f.svc.SyncUser(ctx, "u1")

	assert.True(t, res.Success)
	assert.Equal(t, 2, f.store.Len())
}

func TestResyncAll(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.items.Put(newItem("A", "u1", 30, 30*day))
	f.items.Put(newItem("B", "u2", 30, 30*day))
	f.items.Put(newItem("C", "u3", 30, 30*day))
	require.NoError(t, f.perms.SetStatus(ctx, "u3", domain.PermissionDenied))

	f.svc.ResyncAll(ctx)

	assert.Len(t, f.entriesFor(t, "A", "u1"), 2)
	assert.Len(t, f.entriesFor(t, "B", "u2"), 2)
	assert.Empty(t, f.entriesFor(t, "C", "u3"))
}
