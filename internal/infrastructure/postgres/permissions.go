package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"vn.io.arda/reminder/internal/domain"
)

// PermissionStore is the PostgreSQL implementation of domain.PermissionStore.
type PermissionStore struct {
	pool     *pgxpool.Pool
	fallback domain.PermissionStatus
}

// NewPermissionStore creates a store answering fallback for owners without a row.
func NewPermissionStore(pool *pgxpool.Pool, fallback domain.PermissionStatus) *PermissionStore {
	if _, ok := domain.ParsePermissionStatus(string(fallback)); !ok {
		fallback = domain.PermissionUndetermined
	}
	return &PermissionStore{pool: pool, fallback: fallback}
}

func (s *PermissionStore) Status(ctx context.Context, owner string) (domain.PermissionStatus, error) {
	var status string
	err := s.pool.QueryRow(ctx, `SELECT status FROM notification_permissions WHERE owner = $1`, owner).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s.fallback, nil
		}
		return "", fmt.Errorf("read permission: %w", err)
	}
	return domain.PermissionStatus(status), nil
}

// Request grants permission unless the owner already denied it.
func (s *PermissionStore) Request(ctx context.Context, owner string) (domain.PermissionStatus, error) {
	initial := domain.PermissionGranted
	if s.fallback == domain.PermissionDenied {
		initial = domain.PermissionDenied
	}

	var status string
	err := s.pool.QueryRow(ctx, `
		INSERT INTO notification_permissions (owner, status, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (owner) DO UPDATE SET
			status = CASE WHEN notification_permissions.status = 'denied' THEN 'denied' ELSE 'granted' END,
			updated_at = now()
		RETURNING status
	`, owner, string(initial)).Scan(&status)
	if err != nil {
		return "", fmt.Errorf("request permission: %w", err)
	}
	return domain.PermissionStatus(status), nil
}

func (s *PermissionStore) SetStatus(ctx context.Context, owner string, status domain.PermissionStatus) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO notification_permissions (owner, status, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (owner) DO UPDATE SET status = EXCLUDED.status, updated_at = now()
	`, owner, string(status))
	if err != nil {
		return fmt.Errorf("set permission: %w", err)
	}
	return nil
}
