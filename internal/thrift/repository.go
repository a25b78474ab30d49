package thrift

import (
	"context"

	"github.com/hustlehub/marketplace/internal/domain"
)

// Repository defines the interface for thrift item data operations.
// Writes taking an ownerID match only rows owned by that user and report
// anything else as ErrItemNotFound.
type Repository interface {
	Create(ctx context.Context, item *domain.ThriftItem) error
	Delete(ctx context.Context, id, ownerID string) error
	MarkSold(ctx context.Context, id, ownerID string) (*domain.ThriftItem, error)
	SetAvailable(ctx context.Context, id, ownerID string, available bool) (*domain.ThriftItem, error)

	GetByID(ctx context.Context, id string) (*domain.ThriftItem, error)
	List(ctx context.Context, filter ItemFilter) ([]domain.ThriftItem, error)
	Count(ctx context.Context) (int, error)
}

// ItemFilter represents filter criteria for listing items.
type ItemFilter struct {
	AvailableOnly bool
	OwnerID       string
}
