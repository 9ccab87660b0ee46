package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema creates the tables owned by this service. user_items and catalog
// belong to the item store and are only read.
const schema = `
CREATE TABLE IF NOT EXISTS scheduled_notifications (
	identifier TEXT PRIMARY KEY,
	owner      TEXT NOT NULL DEFAULT '',
	item_name  TEXT NOT NULL DEFAULT '',
	kind       TEXT NOT NULL DEFAULT '',
	trigger_at TIMESTAMPTZ NOT NULL,
	content    JSONB NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_scheduled_notifications_owner ON scheduled_notifications (owner);
CREATE INDEX IF NOT EXISTS idx_scheduled_notifications_trigger ON scheduled_notifications (trigger_at);

CREATE TABLE IF NOT EXISTS notification_permissions (
	owner      TEXT PRIMARY KEY,
	status     TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Migrate creates the service tables if missing.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}
