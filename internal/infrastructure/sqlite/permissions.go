package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vn.io.arda/reminder/internal/domain"
)

// Permissions is a domain.PermissionStore on the same SQLite database.
type Permissions struct {
	db       *DB
	fallback domain.PermissionStatus
}

// NewPermissions answers fallback for owners without a stored status.
func NewPermissions(db *DB, fallback domain.PermissionStatus) *Permissions {
	if _, ok := domain.ParsePermissionStatus(string(fallback)); !ok {
		fallback = domain.PermissionUndetermined
	}
	return &Permissions{db: db, fallback: fallback}
}

func (p *Permissions) Status(ctx context.Context, owner string) (domain.PermissionStatus, error) {
	var status string
	err := p.db.sql.QueryRowContext(ctx, "SELECT status FROM notification_permissions WHERE owner = ?", owner).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return p.fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("read permission: %w", err)
	}
	return domain.PermissionStatus(status), nil
}

// Request grants permission unless it was denied before.
func (p *Permissions) Request(ctx context.Context, owner string) (domain.PermissionStatus, error) {
	current, err := p.Status(ctx, owner)
	if err != nil {
		return "", err
	}
	if current == domain.PermissionDenied {
		return current, nil
	}
	if err := p.SetStatus(ctx, owner, domain.PermissionGranted); err != nil {
		return "", err
	}
	return domain.PermissionGranted, nil
}

func (p *Permissions) SetStatus(ctx context.Context, owner string, status domain.PermissionStatus) error {
	_, err := p.db.sql.ExecContext(ctx, `
INSERT INTO notification_permissions(owner, status, updated_at) VALUES(?,?,?)
ON CONFLICT(owner) DO UPDATE SET status=excluded.status, updated_at=excluded.updated_at`,
		owner, string(status), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("set permission: %w", err)
	}
	return nil
}
