package thrift

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hustlehub/marketplace/internal/action"
	"github.com/hustlehub/marketplace/internal/domain"
	"github.com/hustlehub/marketplace/internal/pkg/httputil"
	"github.com/hustlehub/marketplace/internal/view"
)

type mockRepository struct {
	mu     sync.Mutex
	items  map[string]*domain.ThriftItem
	writes int
	reads  int
}

func newMockRepository() *mockRepository {
	return &mockRepository{items: make(map[string]*domain.ThriftItem)}
}

func (m *mockRepository) seed(i domain.ThriftItem) *domain.ThriftItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.CreatedAt.IsZero() {
		i.CreatedAt = time.Now()
	}
	m.items[i.ID] = &i
	return &i
}

func (m *mockRepository) item(id string) (domain.ThriftItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.items[id]
	if !ok {
		return domain.ThriftItem{}, false
	}
	return *i, true
}

func (m *mockRepository) Create(_ context.Context, item *domain.ThriftItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	item.ID = uuid.NewString()
	item.CreatedAt = time.Now()
	i := *item
	m.items[i.ID] = &i
	return nil
}

func (m *mockRepository) Delete(_ context.Context, id, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.items[id]
	if !ok || i.UserID != ownerID {
		return ErrItemNotFound
	}
	m.writes++
	delete(m.items, id)
	return nil
}

func (m *mockRepository) MarkSold(_ context.Context, id, ownerID string) (*domain.ThriftItem, error) {
	return m.update(id, ownerID, func(i *domain.ThriftItem) {
		i.IsSold = true
		i.IsAvailable = false
	})
}

func (m *mockRepository) SetAvailable(_ context.Context, id, ownerID string, available bool) (*domain.ThriftItem, error) {
	return m.update(id, ownerID, func(i *domain.ThriftItem) { i.IsAvailable = available })
}

func (m *mockRepository) update(id, ownerID string, apply func(i *domain.ThriftItem)) (*domain.ThriftItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.items[id]
	if !ok || i.UserID != ownerID {
		return nil, ErrItemNotFound
	}
	m.writes++
	apply(i)
	out := *i
	return &out, nil
}

func (m *mockRepository) GetByID(_ context.Context, id string) (*domain.ThriftItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	i, ok := m.items[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	out := *i
	return &out, nil
}

func (m *mockRepository) List(_ context.Context, filter ItemFilter) ([]domain.ThriftItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	out := make([]domain.ThriftItem, 0)
	for _, i := range m.items {
		if filter.AvailableOnly && (!i.IsAvailable || i.IsSold) {
			continue
		}
		if filter.OwnerID != "" && i.UserID != filter.OwnerID {
			continue
		}
		out = append(out, *i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}

func (m *mockRepository) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	return len(m.items), nil
}

type contextGate struct{}

func (contextGate) RequireAuthenticated(ctx context.Context) (*domain.User, error) {
	if u := httputil.UserFromContext(ctx); u != nil {
		return u, nil
	}
	return nil, domain.ErrNotAuthenticated
}

func newTestService(repo Repository) (*Service, *view.MemoryRegistry) {
	reg := view.NewMemoryRegistry()
	return NewService(repo, contextGate{}, action.NewRunner(reg)), reg
}

func as(userID string) context.Context {
	return httputil.WithUser(context.Background(), &domain.User{ID: userID, Email: userID + "@example.com"})
}
