package http

import (
	"strings"
	"testing"
	"time"

	"vn.io.arda/reminder/internal/domain"
)

func TestHubBroadcastToOwnerOnly(t *testing.T) {
	h := NewHub()
	a := make(chan []byte, 1)
	b := make(chan []byte, 1)
	ca := h.Register("u1", a)
	h.Register("u2", b)

	if got := h.ConnectedCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	h.Broadcast("u1", domain.ScheduledNotification{
		Identifier: "reminder_Spugna_u1",
		TriggerAt:  time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	})

	select {
	case msg := <-a:
		s := string(msg)
		if !strings.HasPrefix(s, "event: notification\ndata: ") || !strings.Contains(s, "reminder_Spugna_u1") {
			t.Fatalf("unexpected frame %q", s)
		}
	default:
		t.Fatal("u1 did not receive the notification")
	}
	select {
	case <-b:
		t.Fatal("u2 must not receive u1's notification")
	default:
	}

	h.Unregister(ca)
	if got := h.ConnectedCount(); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}
}

func TestHubBroadcastSkipsFullBuffer(t *testing.T) {
	h := NewHub()
	full := make(chan []byte)
	h.Register("u1", full)
	// Must not block on an unbuffered channel without a reader.
	h.Broadcast("u1", domain.ScheduledNotification{Identifier: "expiry_Spugna_u1"})
}
