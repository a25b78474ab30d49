// Package postgres provides PostgreSQL implementation of the thrift repository.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hustlehub/marketplace/internal/domain"
	"github.com/hustlehub/marketplace/internal/pkg/postgres"
	"github.com/hustlehub/marketplace/internal/thrift"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const itemColumns = `id, user_id, title, description, price, is_sold, is_available, created_at`

// Repository implements the thrift.Repository interface using PostgreSQL.
type Repository struct {
	db postgres.Querier
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts an item.
func (r *Repository) Create(ctx context.Context, item *domain.ThriftItem) error {
	query := `
		INSERT INTO thrift_items (user_id, title, description, price, is_available)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_sold, created_at
	`
	err := r.db.QueryRow(ctx, query,
		item.UserID,
		item.Title,
		item.Description,
		item.Price,
		item.IsAvailable,
	).Scan(&item.ID, &item.IsSold, &item.CreatedAt)
	if err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

// Delete removes an item owned by ownerID.
func (r *Repository) Delete(ctx context.Context, id, ownerID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM thrift_items WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		if postgres.IsInvalidInput(err) {
			return thrift.ErrItemNotFound
		}
		return fmt.Errorf("delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return thrift.ErrItemNotFound
	}
	return nil
}

// MarkSold marks an item owned by ownerID as sold and unavailable.
func (r *Repository) MarkSold(ctx context.Context, id, ownerID string) (*domain.ThriftItem, error) {
	query := `
		UPDATE thrift_items
		SET is_sold = true, is_available = false
		WHERE id = $1 AND user_id = $2
		RETURNING ` + itemColumns
	item, err := scanItem(r.db.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		return nil, fmt.Errorf("mark sold: %w", err)
	}
	return item, nil
}

// SetAvailable updates the availability flag of an item owned by ownerID.
func (r *Repository) SetAvailable(ctx context.Context, id, ownerID string, available bool) (*domain.ThriftItem, error) {
	query := `
		UPDATE thrift_items
		SET is_available = $3
		WHERE id = $1 AND user_id = $2
		RETURNING ` + itemColumns
	item, err := scanItem(r.db.QueryRow(ctx, query, id, ownerID, available))
	if err != nil {
		return nil, fmt.Errorf("set available: %w", err)
	}
	return item, nil
}

// GetByID retrieves an item by id.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.ThriftItem, error) {
	item, err := scanItem(r.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM thrift_items WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// List lists items matching filter, newest first.
func (r *Repository) List(ctx context.Context, filter thrift.ItemFilter) ([]domain.ThriftItem, error) {
	query := `SELECT ` + itemColumns + ` FROM thrift_items`

	var conditions []string
	var args []any
	if filter.AvailableOnly {
		conditions = append(conditions, "is_available AND NOT is_sold")
	}
	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.ThriftItem, 0)
	for rows.Next() {
		var i domain.ThriftItem
		if err := rows.Scan(&i.ID, &i.UserID, &i.Title, &i.Description, &i.Price, &i.IsSold, &i.IsAvailable, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// Count returns the number of listings.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM thrift_items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

func scanItem(row pgx.Row) (*domain.ThriftItem, error) {
	var i domain.ThriftItem
	err := row.Scan(&i.ID, &i.UserID, &i.Title, &i.Description, &i.Price, &i.IsSold, &i.IsAvailable, &i.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || postgres.IsInvalidInput(err) {
			return nil, thrift.ErrItemNotFound
		}
		return nil, err
	}
	return &i, nil
}
