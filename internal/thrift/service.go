package thrift

import (
	"context"
	"fmt"
	"strings"

	"github.com/hustlehub/marketplace/internal/action"
	"github.com/hustlehub/marketplace/internal/domain"
)

// Paths lists the pages refreshed after any thrift change.
var Paths = []string{"/dashboard/thrifting", "/dashboard/thrifting/my", "/dashboard"}

// ItemPath returns the detail page of one item.
func ItemPath(id string) string {
	return "/dashboard/thrifting/" + id
}

func pathsFor(id string) []string {
	paths := make([]string, 0, len(Paths)+1)
	paths = append(paths, Paths...)
	return append(paths, ItemPath(id))
}

// Gate is the subset of the authorization gate used by thrift.
type Gate interface {
	RequireAuthenticated(ctx context.Context) (*domain.User, error)
}

// Service implements thrift item operations.
type Service struct {
	repo   Repository
	gate   Gate
	runner *action.Runner
}

// NewService creates a new thrift service.
func NewService(repo Repository, gate Gate, runner *action.Runner) *Service {
	return &Service{
		repo:   repo,
		gate:   gate,
		runner: runner,
	}
}

// CreateItemInput is the new-listing form.
type CreateItemInput struct {
	Title       string  `form:"title" validate:"notblank,max=200"`
	Description string  `form:"description" validate:"max=5000"`
	Price       float64 `form:"price" validate:"gte=0,lte=99999999.99"`
}

// CreateItem lists a new available item owned by the caller.
func (s *Service) CreateItem(ctx context.Context, input CreateItemInput) (*domain.ThriftItem, error) {
	var item *domain.ThriftItem
	err := s.runner.Run(ctx, action.Mutation{
		Name:       "createItem",
		Input:      input,
		Invalidate: Paths,
	}, func(ctx context.Context) error {
		user, err := s.gate.RequireAuthenticated(ctx)
		if err != nil {
			return err
		}

		i := &domain.ThriftItem{
			UserID:      user.ID,
			Title:       strings.TrimSpace(input.Title),
			Description: strings.TrimSpace(input.Description),
			Price:       input.Price,
			IsAvailable: true,
		}
		if err := s.repo.Create(ctx, i); err != nil {
			return fmt.Errorf("create item: %w", err)
		}
		item = i
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ItemIDInput identifies an item in a form.
type ItemIDInput struct {
	ID string `form:"id" validate:"notblank"`
}

// DeleteItem removes one of the caller's items.
func (s *Service) DeleteItem(ctx context.Context, input ItemIDInput) error {
	return s.runner.Run(ctx, action.Mutation{
		Name:       "deleteItem",
		Input:      input,
		Invalidate: pathsFor(input.ID),
	}, func(ctx context.Context) error {
		user, err := s.gate.RequireAuthenticated(ctx)
		if err != nil {
			return err
		}
		return s.repo.Delete(ctx, input.ID, user.ID)
	})
}

// MarkSold marks one of the caller's items as sold, which also takes it off sale.
func (s *Service) MarkSold(ctx context.Context, input ItemIDInput) error {
	return s.runner.Run(ctx, action.Mutation{
		Name:       "markSold",
		Input:      input,
		Invalidate: pathsFor(input.ID),
	}, func(ctx context.Context) error {
		user, err := s.gate.RequireAuthenticated(ctx)
		if err != nil {
			return err
		}
		_, err = s.repo.MarkSold(ctx, input.ID, user.ID)
		return err
	})
}

// SetAvailable is the API toggle for the availability of one of the caller's items.
func (s *Service) SetAvailable(ctx context.Context, id string, available bool) (*domain.ThriftItem, error) {
	var item *domain.ThriftItem
	err := s.runner.Run(ctx, action.Mutation{
		Name:       "setItemAvailable",
		Invalidate: pathsFor(id),
	}, func(ctx context.Context) error {
		user, err := s.gate.RequireAuthenticated(ctx)
		if err != nil {
			return err
		}
		item, err = s.repo.SetAvailable(ctx, id, user.ID, available)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListItems returns the items currently for sale, newest first.
func (s *Service) ListItems(ctx context.Context) ([]domain.ThriftItem, error) {
	return s.repo.List(ctx, ItemFilter{AvailableOnly: true})
}

// MyItems splits the caller's listings into those still on offer and those sold.
type MyItems struct {
	Available []domain.ThriftItem `json:"available"`
	Sold      []domain.ThriftItem `json:"sold"`
}

// ListMine returns the items owned by ownerID.
func (s *Service) ListMine(ctx context.Context, ownerID string) (*MyItems, error) {
	items, err := s.repo.List(ctx, ItemFilter{OwnerID: ownerID})
	if err != nil {
		return nil, err
	}

	mine := &MyItems{
		Available: make([]domain.ThriftItem, 0),
		Sold:      make([]domain.ThriftItem, 0),
	}
	for _, item := range items {
		if item.IsSold {
			mine.Sold = append(mine.Sold, item)
		} else {
			mine.Available = append(mine.Available, item)
		}
	}
	return mine, nil
}

// ItemView is an item as seen by one viewer.
type ItemView struct {
	Item    *domain.ThriftItem `json:"item"`
	IsOwner bool               `json:"is_owner"`
}

// GetItem returns an item that is on sale or owned by the viewer.
// Other items are reported as ErrItemNotFound.
func (s *Service) GetItem(ctx context.Context, id, viewerID string) (*ItemView, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	isOwner := viewerID != "" && item.UserID == viewerID
	if !isOwner && (!item.IsAvailable || item.IsSold) {
		return nil, ErrItemNotFound
	}
	return &ItemView{Item: item, IsOwner: isOwner}, nil
}

// Count returns the total number of listings.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
