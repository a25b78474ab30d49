package courses

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

// mockRepository is an in-memory Repository that applies the same owner and
// publication predicates as the SQL implementation.
type mockRepository struct {
	mu          sync.Mutex
	courses     map[string]*domain.Course
	enrollments map[[2]string]domain.Enrollment
	writes      int
	reads       int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		courses:     make(map[string]*domain.Course),
		enrollments: make(map[[2]string]domain.Enrollment),
	}
}

func (m *mockRepository) seed(c domain.Course) *domain.Course {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	m.courses[c.ID] = &c
	return &c
}

func (m *mockRepository) Create(_ context.Context, course *domain.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	course.ID = uuid.NewString()
	course.CreatedAt = time.Now()
	c := *course
	m.courses[c.ID] = &c
	return nil
}

func (m *mockRepository) Delete(_ context.Context, id, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.courses[id]
	if !ok || c.UserID != ownerID {
		return ErrCourseNotFound
	}
	m.writes++
	delete(m.courses, id)
	return nil
}

func (m *mockRepository) SetPublished(_ context.Context, id, ownerID string, published bool) (*domain.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.courses[id]
	if !ok || c.UserID != ownerID {
		return nil, ErrCourseNotFound
	}
	m.writes++
	c.IsPublished = published
	out := *c
	return &out, nil
}

func (m *mockRepository) Enroll(_ context.Context, userID, courseID string) (*domain.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.courses[courseID]
	if !ok || !c.IsPublished {
		return nil, ErrCourseNotFound
	}
	key := [2]string{userID, courseID}
	if _, exists := m.enrollments[key]; exists {
		return nil, ErrAlreadyEnrolled
	}
	m.writes++
	e := domain.Enrollment{ID: uuid.NewString(), UserID: userID, CourseID: courseID, CreatedAt: time.Now()}
	m.enrollments[key] = e
	return &e, nil
}

func (m *mockRepository) GetByID(_ context.Context, id string) (*domain.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	c, ok := m.courses[id]
	if !ok {
		return nil, ErrCourseNotFound
	}
	out := *c
	return &out, nil
}

func (m *mockRepository) ListByOwner(_ context.Context, ownerID string) ([]domain.Course, error) {
	return m.filter(func(c *domain.Course) bool { return c.UserID == ownerID }), nil
}

func (m *mockRepository) ListPublished(_ context.Context) ([]domain.Course, error) {
	return m.filter(func(c *domain.Course) bool { return c.IsPublished }), nil
}

func (m *mockRepository) ListEnrolled(_ context.Context, userID string) ([]domain.Course, error) {
	m.mu.Lock()
	ids := map[string]bool{}
	for key := range m.enrollments {
		if key[0] == userID {
			ids[key[1]] = true
		}
	}
	m.mu.Unlock()
	return m.filter(func(c *domain.Course) bool { return ids[c.ID] }), nil
}

func (m *mockRepository) IsEnrolled(_ context.Context, userID, courseID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.enrollments[[2]string{userID, courseID}]
	return ok, nil
}

func (m *mockRepository) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	return len(m.courses), nil
}

func (m *mockRepository) filter(keep func(c *domain.Course) bool) []domain.Course {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	out := make([]domain.Course, 0)
	for _, c := range m.courses {
		if keep(c) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *mockRepository) enrollmentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.enrollments)
}

// contextGate authorizes from the session user stored on the context.
type contextGate struct{}

func (contextGate) RequireAuthenticated(ctx context.Context) (*domain.User, error) {
	if u := httputil.UserFromContext(ctx); u != nil {
		return u, nil
	}
	return nil, domain.ErrNotAuthenticated
}

func (contextGate) OptionalUser(ctx context.Context) *domain.User {
	return httputil.UserFromContext(ctx)
}

func newTestService(repo Repository) (*Service, *view.MemoryRegistry) {
	reg := view.NewMemoryRegistry()
	return NewService(repo, contextGate{}, action.NewRunner(reg)), reg
}

func as(userID string) context.Context {
	return httputil.WithUser(context.Background(), &domain.User{ID: userID, Email: userID + "@example.com"})
}
