package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"vn.io.arda/reminder/internal/domain"
)

// ItemRepository reads active items from the item store's user_items table,
// joined with catalog metadata.
type ItemRepository struct {
	pool *pgxpool.Pool
}

// NewItemRepository creates a new postgres ItemRepository.
func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{pool: pool}
}

const itemSelect = `
	SELECT ui.name, ui.owner::text, ui.duration_days, ui.created_at, ui.expired_at,
	       COALESCE(c.category, ''), COALESCE(c.description, ''), COALESCE(c.icon, ''), COALESCE(c.link, '')
	FROM user_items ui
	LEFT JOIN catalog c ON c.name = ui.name
`

// ListByOwner returns every active item of owner.
func (r *ItemRepository) ListByOwner(ctx context.Context, owner string) ([]domain.Item, error) {
	rows, err := r.pool.Query(ctx, itemSelect+` WHERE ui.owner::text = $1 ORDER BY ui.name`, owner)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// Get returns one active item.
func (r *ItemRepository) Get(ctx context.Context, owner, name string) (*domain.Item, error) {
	row := r.pool.QueryRow(ctx, itemSelect+` WHERE ui.owner::text = $1 AND ui.name = $2`, owner, name)
	it, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, err
	}
	return &it, nil
}

// Owners lists owners with at least one active item.
func (r *ItemRepository) Owners(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT owner::text FROM user_items ORDER BY 1`)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	owners, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect owners: %w", err)
	}
	return owners, nil
}

func scanItem(row scannable) (domain.Item, error) {
	var it domain.Item
	var category string
	err := row.Scan(
		&it.Name, &it.Owner, &it.DurationDays, &it.CreatedAt, &it.ExpiredAt,
		&category, &it.Description, &it.Icon, &it.Link,
	)
	if err != nil {
		return it, fmt.Errorf("scan item: %w", err)
	}
	it.Category = domain.Category(category)
	return it, nil
}
