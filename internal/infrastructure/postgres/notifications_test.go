package postgres

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type fakeRow struct {
	identifier string
	trigger    time.Time
	content    []byte
}

func (r fakeRow) Scan(dest ...any) error {
	*dest[0].(*string) = r.identifier
	*dest[1].(*time.Time) = r.trigger
	*dest[2].(*[]byte) = r.content
	return nil
}

func TestScanNotification(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	n, err := scanNotification(fakeRow{
		identifier: "reminder_Filtro_u1",
		trigger:    at,
		content:    []byte(`{"title":"Promemoria: Filtro","data":{"type":"reminder","itemName":"Filtro","owner":"u1","daysUntilExpiry":7}}`),
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if n.Content.Data == nil || n.Content.Data.DaysUntilExpiry != 7 || !n.TriggerAt.Equal(at) {
		t.Fatalf("unexpected notification %+v", n)
	}
}

func TestScanNotification_CorruptContentIsLogged(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	n, err := scanNotification(fakeRow{identifier: "expiry_Filtro_u1", content: []byte("{not json")})
	if err != nil {
		t.Fatalf("corrupt content must not fail the scan: %v", err)
	}
	if n.Owner() != "u1" {
		t.Fatalf("expected identifier fallback, got owner %q", n.Owner())
	}
	out := buf.String()
	if !strings.Contains(out, "unreadable notification content") || !strings.Contains(out, "expiry_Filtro_u1") {
		t.Fatalf("expected warning with identifier, got %q", out)
	}
}
