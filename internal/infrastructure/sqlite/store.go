// Package sqlite keeps the notification and permission stores in a local
// SQLite file, the device-local flavour of the notification store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
	"vn.io.arda/reminder/internal/domain"
)

// DB wraps the SQLite handle shared by the notification and permission stores.
type DB struct {
	sql *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
// Use ":memory:" for a throwaway database.
func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS scheduled_notifications (
  identifier TEXT PRIMARY KEY,
  owner      TEXT NOT NULL DEFAULT '',
  item_name  TEXT NOT NULL DEFAULT '',
  kind       TEXT NOT NULL DEFAULT '',
  trigger_at INTEGER NOT NULL,
  content    TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_notifications_owner ON scheduled_notifications(owner);
CREATE INDEX IF NOT EXISTS idx_notifications_trigger ON scheduled_notifications(trigger_at);
CREATE TABLE IF NOT EXISTS notification_permissions (
  owner      TEXT PRIMARY KEY,
  status     TEXT NOT NULL,
  updated_at INTEGER NOT NULL
);
`); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// Schedule upserts n by identifier.
func (d *DB) Schedule(ctx context.Context, n domain.ScheduledNotification) error {
	content, err := json.Marshal(n.Content)
	if err != nil {
		return fmt.Errorf("marshal content: %w", err)
	}
	var owner, itemName, kind string
	if key, ok := n.Key(); ok {
		owner, itemName, kind = key.Owner, key.ItemName, string(key.Kind)
	}
	_, err = d.sql.ExecContext(ctx, `
INSERT INTO scheduled_notifications(identifier, owner, item_name, kind, trigger_at, content)
VALUES(?,?,?,?,?,?)
ON CONFLICT(identifier) DO UPDATE SET
  owner=excluded.owner, item_name=excluded.item_name, kind=excluded.kind,
  trigger_at=excluded.trigger_at, content=excluded.content`,
		n.Identifier, owner, itemName, kind, n.TriggerAt.UnixMilli(), string(content))
	if err != nil {
		return fmt.Errorf("schedule notification: %w", err)
	}
	return nil
}

// Cancel deletes the notification with identifier.
func (d *DB) Cancel(ctx context.Context, identifier string) error {
	if _, err := d.sql.ExecContext(ctx, "DELETE FROM scheduled_notifications WHERE identifier = ?", identifier); err != nil {
		return fmt.Errorf("cancel notification: %w", err)
	}
	return nil
}

// CancelIfDue deletes identifier only while it triggers at or before triggerAt.
func (d *DB) CancelIfDue(ctx context.Context, identifier string, triggerAt time.Time) (bool, error) {
	res, err := d.sql.ExecContext(ctx,
		"DELETE FROM scheduled_notifications WHERE identifier = ? AND trigger_at <= ?",
		identifier, triggerAt.UnixMilli())
	if err != nil {
		return false, fmt.Errorf("cancel due notification: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("cancel due notification: %w", err)
	}
	return n > 0, nil
}

// List returns the owner's notifications, or all for an empty owner.
func (d *DB) List(ctx context.Context, owner string) ([]domain.ScheduledNotification, error) {
	return d.query(ctx, "SELECT identifier, trigger_at, content FROM scheduled_notifications WHERE ? = '' OR owner = ? ORDER BY trigger_at, identifier", owner, owner)
}

// Due returns notifications triggering at or before now.
func (d *DB) Due(ctx context.Context, now time.Time) ([]domain.ScheduledNotification, error) {
	return d.query(ctx, "SELECT identifier, trigger_at, content FROM scheduled_notifications WHERE trigger_at <= ? ORDER BY trigger_at, identifier", now.UnixMilli())
}

func (d *DB) query(ctx context.Context, q string, args ...any) ([]domain.ScheduledNotification, error) {
	rows, err := d.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var out []domain.ScheduledNotification
	for rows.Next() {
		var (
			n       domain.ScheduledNotification
			trigger int64
			content string
		)
		if err := rows.Scan(&n.Identifier, &trigger, &content); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.TriggerAt = time.UnixMilli(trigger).UTC()
		if err := json.Unmarshal([]byte(content), &n.Content); err != nil {
			log.Warn().Err(err).Str("identifier", n.Identifier).Msg("sqlite: unreadable notification content")
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
