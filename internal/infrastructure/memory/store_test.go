package memory_test

import (
	"context"
	"testing"
	"time"

	"vn.io.arda/reminder/internal/domain"
	"vn.io.arda/reminder/internal/infrastructure/memory"
)

func entry(kind domain.Kind, name, owner string, at time.Time) domain.ScheduledNotification {
	key := domain.Key{Kind: kind, ItemName: name, Owner: owner}
	return domain.ScheduledNotification{
		Identifier: key.Identifier(),
		TriggerAt:  at,
		Content:    domain.Content{Data: &domain.Payload{Kind: kind, ItemName: name, Owner: owner}},
	}
}

func TestStore_ScheduleReplacesSameIdentifier(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	now := time.Now()

	_ = s.Schedule(ctx, entry(domain.KindExpiry, "Filtro", "u1", now.Add(time.Hour)))
	_ = s.Schedule(ctx, entry(domain.KindExpiry, "Filtro", "u1", now.Add(2*time.Hour)))

	if s.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", s.Len())
	}
	got, _ := s.List(ctx, "u1")
	if !got[0].TriggerAt.Equal(now.Add(2 * time.Hour)) {
		t.Fatal("expected the second schedule to win")
	}
}

func TestStore_ListFiltersByOwner(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	now := time.Now()
	_ = s.Schedule(ctx, entry(domain.KindExpiry, "A", "u1", now.Add(time.Hour)))
	_ = s.Schedule(ctx, entry(domain.KindExpiry, "A", "u2", now.Add(time.Hour)))
	_ = s.Schedule(ctx, domain.ScheduledNotification{Identifier: "foreign", TriggerAt: now})

	mine, _ := s.List(ctx, "u1")
	if len(mine) != 1 || mine[0].Owner() != "u1" {
		t.Fatalf("unexpected owner listing: %+v", mine)
	}
	all, _ := s.List(ctx, "")
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}
}

func TestStore_DueAndCancel(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	now := time.Now()
	past := entry(domain.KindReminder, "A", "u1", now.Add(-time.Minute))
	_ = s.Schedule(ctx, past)
	_ = s.Schedule(ctx, entry(domain.KindExpiry, "A", "u1", now.Add(time.Hour)))

	due, _ := s.Due(ctx, now)
	if len(due) != 1 || due[0].Identifier != past.Identifier {
		t.Fatalf("unexpected due set: %+v", due)
	}

	_ = s.Cancel(ctx, past.Identifier)
	_ = s.Cancel(ctx, "missing")
	if s.Len() != 1 {
		t.Fatalf("expected 1 entry after cancel, got %d", s.Len())
	}
}

func TestPermissions_DeniedIsSticky(t *testing.T) {
	ctx := context.Background()
	p := memory.NewPermissions(domain.PermissionUndetermined)

	st, _ := p.Request(ctx, "u1")
	if st != domain.PermissionGranted {
		t.Fatalf("expected granted, got %s", st)
	}

	_ = p.SetStatus(ctx, "u2", domain.PermissionDenied)
	st, _ = p.Request(ctx, "u2")
	if st != domain.PermissionDenied {
		t.Fatalf("expected denied to stick, got %s", st)
	}

	st, _ = p.Status(ctx, "u3")
	if st != domain.PermissionUndetermined {
		t.Fatalf("expected fallback status, got %s", st)
	}
}

func TestStore_CancelIfDueKeepsRescheduledGeneration(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	fired := entry(domain.KindExpiry, "Filtro", "u1", now.Add(-time.Minute))
	_ = s.Schedule(ctx, fired)
	_ = s.Schedule(ctx, entry(domain.KindExpiry, "Filtro", "u1", now.Add(90*24*time.Hour)))

	removed, err := s.CancelIfDue(ctx, fired.Identifier, fired.TriggerAt)
	if err != nil || removed {
		t.Fatalf("expected renewed entry to be kept, removed=%v err=%v", removed, err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", s.Len())
	}

	_ = s.Schedule(ctx, fired)
	removed, err = s.CancelIfDue(ctx, fired.Identifier, fired.TriggerAt)
	if err != nil || !removed || s.Len() != 0 {
		t.Fatalf("expected due entry removed, removed=%v err=%v len=%d", removed, err, s.Len())
	}

	if removed, _ := s.CancelIfDue(ctx, "expiry_Missing_u1", now); removed {
		t.Fatal("unknown identifier must not report removal")
	}
}
