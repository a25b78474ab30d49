package clipping

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

// mockRepository is an in-memory Repository. Its profiles map plays the
// part of the profiles table for the role-conditioned insert.
type mockRepository struct {
	mu       sync.Mutex
	profiles map[string]domain.Role
	jobs     map[string]*domain.ClippingJob
	apps     map[string]*domain.ClippingApplication
	writes   int
	reads    int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		profiles: make(map[string]domain.Role),
		jobs:     make(map[string]*domain.ClippingJob),
		apps:     make(map[string]*domain.ClippingApplication),
	}
}

func (m *mockRepository) roleOf(userID string) domain.Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	if role, ok := m.profiles[userID]; ok {
		return role
	}
	return domain.RoleUser
}

func (m *mockRepository) setRole(userID string, role domain.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[userID] = role
}

func (m *mockRepository) seedJob(j domain.ClippingJob) *domain.ClippingJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	if j.Status == "" {
		j.Status = domain.JobStatusOpen
	}
	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Now()
	}
	m.jobs[j.ID] = &j
	return &j
}

func (m *mockRepository) jobCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

func (m *mockRepository) application(id string) domain.ClippingApplication {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.apps[id]
}

func (m *mockRepository) CreateJob(_ context.Context, job *domain.ClippingJob, roles []domain.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	role, ok := m.profiles[job.CreatedBy]
	if !ok || !role.In(roles...) {
		return ErrCreatorRoleRequired
	}
	m.writes++
	job.ID = uuid.NewString()
	job.CreatedAt = time.Now()
	j := *job
	m.jobs[j.ID] = &j
	return nil
}

func (m *mockRepository) DeleteJob(_ context.Context, id, creatorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || j.CreatedBy != creatorID {
		return ErrJobNotFound
	}
	m.writes++
	delete(m.jobs, id)
	return nil
}

func (m *mockRepository) SetActive(_ context.Context, id, creatorID string, active bool) (*domain.ClippingJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || j.CreatedBy != creatorID {
		return nil, ErrJobNotFound
	}
	m.writes++
	j.IsActive = active
	out := *j
	return &out, nil
}

func (m *mockRepository) Apply(_ context.Context, jobID, applicantID, email string) (*domain.ClippingApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[jobID]
	if !ok || !j.IsActive || j.Status != domain.JobStatusOpen {
		return nil, ErrJobNotFound
	}
	for _, a := range m.apps {
		if a.JobID == jobID && a.ApplicantID == applicantID {
			return nil, ErrAlreadyApplied
		}
	}
	m.writes++
	a := &domain.ClippingApplication{
		ID:          uuid.NewString(),
		JobID:       jobID,
		ApplicantID: applicantID,
		Email:       email,
		Status:      domain.ApplicationStatusApplied,
		CreatedAt:   time.Now(),
	}
	m.apps[a.ID] = a
	out := *a
	return &out, nil
}

func (m *mockRepository) DecideApplication(_ context.Context, appID, actorID string, asAdmin bool, status domain.ApplicationStatus) (*domain.ClippingApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.apps[appID]
	if !ok || !a.Status.CanTransitionTo(status) {
		return nil, ErrApplicationNotFound
	}
	j, ok := m.jobs[a.JobID]
	if !ok || (j.CreatedBy != actorID && !asAdmin) {
		return nil, ErrApplicationNotFound
	}
	m.writes++
	a.Status = status
	out := *a
	out.JobTitle = j.Title
	return &out, nil
}

func (m *mockRepository) GetJob(_ context.Context, id string) (*domain.ClippingJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	j, ok := m.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	out := *j
	return &out, nil
}

func (m *mockRepository) ListJobs(_ context.Context, filter JobFilter) ([]domain.ClippingJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	out := make([]domain.ClippingJob, 0)
	for _, j := range m.jobs {
		if filter.ActiveOnly && !j.IsActive {
			continue
		}
		if filter.CreatedBy != "" && j.CreatedBy != filter.CreatedBy {
			continue
		}
		out = append(out, *j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	return out, nil
}

func (m *mockRepository) ListApplications(_ context.Context, jobID string) ([]domain.ClippingApplication, error) {
	return m.filterApps(func(a *domain.ClippingApplication) bool { return a.JobID == jobID }), nil
}

func (m *mockRepository) ListApplicationsByApplicant(_ context.Context, applicantID string) ([]domain.ClippingApplication, error) {
	return m.filterApps(func(a *domain.ClippingApplication) bool { return a.ApplicantID == applicantID }), nil
}

func (m *mockRepository) HasApplied(_ context.Context, jobID, applicantID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.apps {
		if a.JobID == jobID && a.ApplicantID == applicantID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepository) CountJobs(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	return len(m.jobs), nil
}

func (m *mockRepository) filterApps(keep func(a *domain.ClippingApplication) bool) []domain.ClippingApplication {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	out := make([]domain.ClippingApplication, 0)
	for _, a := range m.apps {
		if keep(a) {
			app := *a
			if j, ok := m.jobs[a.JobID]; ok {
				app.JobTitle = j.Title
			}
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.Before(out[k].CreatedAt) })
	return out
}

// roleGate authorizes from the context user and the mock's profiles.
type roleGate struct {
	repo *mockRepository
}

func (g roleGate) RequireAuthenticated(ctx context.Context) (*domain.User, error) {
	if u := httputil.UserFromContext(ctx); u != nil {
		return u, nil
	}
	return nil, domain.ErrNotAuthenticated
}

func (g roleGate) RequireRoleIn(ctx context.Context, roles ...domain.Role) (*domain.Principal, error) {
	user, err := g.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	role := g.repo.roleOf(user.ID)
	if !role.In(roles...) {
		return nil, domain.ErrNotAuthorized
	}
	return &domain.Principal{ID: user.ID, Email: user.Email, Role: role}, nil
}

func newTestService(repo *mockRepository) (*Service, *view.MemoryRegistry) {
	reg := view.NewMemoryRegistry()
	return NewService(repo, roleGate{repo: repo}, action.NewRunner(reg)), reg
}

func as(userID string) context.Context {
	return httputil.WithUser(context.Background(), &domain.User{ID: userID, Email: userID + "@example.com"})
}
