package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"vn.io.arda/reminder/internal/domain"
)

// NotificationStore is the PostgreSQL implementation of domain.NotificationStore.
type NotificationStore struct {
	pool *pgxpool.Pool
}

// NewNotificationStore creates a new postgres NotificationStore.
func NewNotificationStore(pool *pgxpool.Pool) *NotificationStore {
	return &NotificationStore{pool: pool}
}

const notificationColumns = "identifier, trigger_at, content"

// Schedule upserts the notification by identifier.
func (s *NotificationStore) Schedule(ctx context.Context, n domain.ScheduledNotification) error {
	content, err := json.Marshal(n.Content)
	if err != nil {
		return fmt.Errorf("marshal content: %w", err)
	}

	var owner, itemName, kind string
	if key, ok := n.Key(); ok {
		owner, itemName, kind = key.Owner, key.ItemName, string(key.Kind)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO scheduled_notifications (identifier, owner, item_name, kind, trigger_at, content)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (identifier) DO UPDATE SET
			owner = EXCLUDED.owner,
			item_name = EXCLUDED.item_name,
			kind = EXCLUDED.kind,
			trigger_at = EXCLUDED.trigger_at,
			content = EXCLUDED.content,
			created_at = now()
	`, n.Identifier, owner, itemName, kind, n.TriggerAt, content)
	if err != nil {
		return fmt.Errorf("schedule notification: %w", err)
	}
	return nil
}

// Cancel deletes the notification. Unknown identifiers are not an error.
func (s *NotificationStore) Cancel(ctx context.Context, identifier string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM scheduled_notifications WHERE identifier = $1`, identifier); err != nil {
		return fmt.Errorf("cancel notification: %w", err)
	}
	return nil
}

// CancelIfDue deletes identifier only while it triggers at or before triggerAt.
func (s *NotificationStore) CancelIfDue(ctx context.Context, identifier string, triggerAt time.Time) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM scheduled_notifications WHERE identifier = $1 AND trigger_at <= $2`,
		identifier, triggerAt)
	if err != nil {
		return false, fmt.Errorf("cancel due notification: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// List returns the owner's notifications, or all of them for an empty owner.
func (s *NotificationStore) List(ctx context.Context, owner string) ([]domain.ScheduledNotification, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM scheduled_notifications
		WHERE $1::text = '' OR owner = $1
		ORDER BY trigger_at, identifier
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return collectNotifications(rows)
}

// Due returns notifications whose trigger time has passed.
func (s *NotificationStore) Due(ctx context.Context, now time.Time) ([]domain.ScheduledNotification, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM scheduled_notifications
		WHERE trigger_at <= $1
		ORDER BY trigger_at, identifier
	`, now)
	if err != nil {
		return nil, fmt.Errorf("list due notifications: %w", err)
	}
	return collectNotifications(rows)
}

func collectNotifications(rows pgx.Rows) ([]domain.ScheduledNotification, error) {
	defer rows.Close()
	var out []domain.ScheduledNotification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}

func scanNotification(row scannable) (domain.ScheduledNotification, error) {
	var n domain.ScheduledNotification
	var content []byte
	if err := row.Scan(&n.Identifier, &n.TriggerAt, &content); err != nil {
		return n, fmt.Errorf("scan notification: %w", err)
	}
	if len(content) > 0 {
		if err := json.Unmarshal(content, &n.Content); err != nil {
			log.Warn().Err(err).Str("identifier", n.Identifier).Msg("postgres: unreadable notification content")
		}
	}
	return n, nil
}
