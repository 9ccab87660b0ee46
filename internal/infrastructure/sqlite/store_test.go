package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vn.io.arda/reminder/internal/domain"
	"vn.io.arda/reminder/internal/infrastructure/sqlite"
)

func openDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func notification(kind domain.Kind, name, owner string, at time.Time) domain.ScheduledNotification {
	key := domain.Key{Kind: kind, ItemName: name, Owner: owner}
	return domain.ScheduledNotification{
		Identifier: key.Identifier(),
		TriggerAt:  at,
		Content: domain.Content{
			Title: "Promemoria: " + name,
			Data:  &domain.Payload{Kind: kind, ItemName: name, Owner: owner, DaysUntilExpiry: 7},
		},
	}
}

func TestDB_ScheduleListCancel(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	at := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, db.Schedule(ctx, notification(domain.KindReminder, "Filtro", "u1", at)))
	require.NoError(t, db.Schedule(ctx, notification(domain.KindExpiry, "Filtro", "u1", at.Add(7*24*time.Hour))))
	require.NoError(t, db.Schedule(ctx, notification(domain.KindExpiry, "Filtro", "u2", at)))

	mine, err := db.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "reminder_Filtro_u1", mine[0].Identifier)
	assert.True(t, mine[0].TriggerAt.Equal(at))
	require.NotNil(t, mine[0].Content.Data)
	assert.Equal(t, 7, mine[0].Content.Data.DaysUntilExpiry)
	assert.Equal(t, "Promemoria: Filtro", mine[0].Content.Title)

	all, err := db.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, db.Cancel(ctx, "reminder_Filtro_u1"))
	require.NoError(t, db.Cancel(ctx, "reminder_Filtro_u1"))
	mine, err = db.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestDB_ScheduleReplaces(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	at := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, db.Schedule(ctx, notification(domain.KindExpiry, "Filtro", "u1", at)))
	require.NoError(t, db.Schedule(ctx, notification(domain.KindExpiry, "Filtro", "u1", at.Add(time.Hour))))

	all, err := db.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].TriggerAt.Equal(at.Add(time.Hour)))
}

func TestDB_Due(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, db.Schedule(ctx, notification(domain.KindReminder, "A", "u1", now.Add(-time.Minute))))
	require.NoError(t, db.Schedule(ctx, notification(domain.KindExpiry, "A", "u1", now.Add(time.Minute))))

	due, err := db.Due(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "reminder_A_u1", due[0].Identifier)
}

func TestPermissions(t *testing.T) {
	ctx := context.Background()
	p := sqlite.NewPermissions(openDB(t), domain.PermissionUndetermined)

	st, err := p.Status(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.PermissionUndetermined, st)

	st, err = p.Request(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.PermissionGranted, st)

	require.NoError(t, p.SetStatus(ctx, "u1", domain.PermissionDenied))
	st, err = p.Request(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.PermissionDenied, st)
}

func TestDB_CancelIfDue(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	fired := notification(domain.KindExpiry, "Filtro", "u1", now.Add(-time.Minute))
	require.NoError(t, db.Schedule(ctx, fired))
	// Renewed after the dispatcher listed it.
	require.NoError(t, db.Schedule(ctx, notification(domain.KindExpiry, "Filtro", "u1", now.Add(90*24*time.Hour))))

	removed, err := db.CancelIfDue(ctx, fired.Identifier, fired.TriggerAt)
	require.NoError(t, err)
	assert.False(t, removed)
	all, err := db.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.NoError(t, db.Schedule(ctx, fired))
	removed, err = db.CancelIfDue(ctx, fired.Identifier, fired.TriggerAt)
	require.NoError(t, err)
	assert.True(t, removed)
	all, err = db.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, all)
}
