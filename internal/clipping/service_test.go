package clipping

import (
	"context"
	"math"
	"testing"

	"github.com/hustlehub/marketplace/internal/action"
	"github.com/hustlehub/marketplace/internal/domain"
	"github.com/hustlehub/marketplace/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateJob_Creator(t *testing.T) {
	repo := newMockRepository()
	repo.setRole("creator-1", domain.RoleCreator)
	service, reg := newTestService(repo)

	job, err := service.CreateJob(as("creator-1"), CreateJobInput{
		Title:    "Edit my reel",
		Platform: "TikTok",
		Reward:   500,
	})
	require.NoError(t, err)

	assert.Equal(t, "creator-1", job.CreatedBy)
	assert.Equal(t, domain.JobStatusOpen, job.Status)
	assert.True(t, job.IsActive)
	assert.Equal(t, 500.0, job.Reward)
	assert.Equal(t, 1, repo.jobCount())

	stale, err := view.IsStale(context.Background(), reg, "/dashboard/clipping", 0)
	require.NoError(t, err)
	assert.True(t, stale)
}

func TestCreateJob_RoleOutsideCreators(t *testing.T) {
	tests := []struct {
		name    string
		role    *domain.Role
		wantErr error
	}{
		{name: "user role", role: rolePtr(domain.RoleUser), wantErr: domain.ErrNotAuthorized},
		{name: "no profile", role: nil, wantErr: domain.ErrNotAuthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockRepository()
			if tt.role != nil {
				repo.setRole("someone", *tt.role)
			}
			service, reg := newTestService(repo)

			_, err := service.CreateJob(as("someone"), CreateJobInput{Title: "Edit my reel", Platform: "TikTok", Reward: 500})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, repo.writes)

			v, _ := reg.Version(context.Background(), "/dashboard/clipping")
			assert.Equal(t, uint64(0), v)
		})
	}
}

// permissiveGate lets every caller through so the store-side role check is
// the only guard left.
type permissiveGate struct{}

func (permissiveGate) RequireAuthenticated(ctx context.Context) (*domain.User, error) {
	return roleGate{}.RequireAuthenticated(ctx)
}

func (permissiveGate) RequireRoleIn(ctx context.Context, _ ...domain.Role) (*domain.Principal, error) {
	user, err := roleGate{}.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.Principal{ID: user.ID, Email: user.Email, Role: domain.RoleCreator}, nil
}

func TestCreateJob_RoleRevokedAfterGate(t *testing.T) {
	repo := newMockRepository()
	repo.setRole("former-creator", domain.RoleUser)
	service := NewService(repo, permissiveGate{}, action.NewRunner(view.NewMemoryRegistry()))

	_, err := service.CreateJob(as("former-creator"), CreateJobInput{Title: "x", Platform: "YouTube"})
	assert.ErrorIs(t, err, ErrCreatorRoleRequired)
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)
	assert.Equal(t, 0, repo.jobCount())
}

func TestCreateJob_Validation(t *testing.T) {
	repo := newMockRepository()
	repo.setRole("creator-1", domain.RoleCreator)
	service, _ := newTestService(repo)

	tests := []struct {
		name  string
		input CreateJobInput
	}{
		{name: "blank title", input: CreateJobInput{Title: "  ", Platform: "TikTok"}},
		{name: "missing platform", input: CreateJobInput{Title: "Edit"}},
		{name: "negative reward", input: CreateJobInput{Title: "Edit", Platform: "TikTok", Reward: -5}},
		{name: "reward beyond column precision", input: CreateJobInput{Title: "Edit", Platform: "TikTok", Reward: 1e9}},
		{name: "infinite reward", input: CreateJobInput{Title: "Edit", Platform: "TikTok", Reward: math.Inf(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateJob(as("creator-1"), tt.input)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
	assert.Equal(t, 0, repo.writes)
}

func TestApply(t *testing.T) {
	repo := newMockRepository()
	job := repo.seedJob(domain.ClippingJob{CreatedBy: "creator-1", Title: "Edit", IsActive: true})
	service, _ := newTestService(repo)

	require.NoError(t, service.Apply(as("clipper"), JobIDInput{JobID: job.ID}))

	err := service.Apply(as("clipper"), JobIDInput{JobID: job.ID})
	assert.ErrorIs(t, err, ErrAlreadyApplied)
	assert.ErrorIs(t, err, domain.ErrConflict)

	apps, err := service.ListMyApplications(context.Background(), "clipper")
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "clipper@example.com", apps[0].Email)
	assert.Equal(t, "Edit", apps[0].JobTitle)
	assert.Equal(t, domain.ApplicationStatusApplied, apps[0].Status)
}

func TestApply_InactiveJob(t *testing.T) {
	repo := newMockRepository()
	job := repo.seedJob(domain.ClippingJob{CreatedBy: "creator-1", IsActive: false})
	service, _ := newTestService(repo)

	err := service.Apply(as("clipper"), JobIDInput{JobID: job.ID})
	assert.ErrorIs(t, err, ErrJobNotFound)
	assert.Equal(t, 0, repo.writes)
}

func TestApply_Anonymous(t *testing.T) {
	repo := newMockRepository()
	job := repo.seedJob(domain.ClippingJob{CreatedBy: "creator-1", IsActive: true})
	service, _ := newTestService(repo)

	err := service.Apply(context.Background(), JobIDInput{JobID: job.ID})
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestUpdateApplicationStatus(t *testing.T) {
	repo := newMockRepository()
	repo.setRole("creator-1", domain.RoleCreator)
	repo.setRole("creator-2", domain.RoleCreator)
	repo.setRole("boss", domain.RoleAdmin)
	job := repo.seedJob(domain.ClippingJob{CreatedBy: "creator-1", Title: "Edit", IsActive: true})
	service, _ := newTestService(repo)

	apply := func(user string) string {
		app, err := repo.Apply(context.Background(), job.ID, user, user+"@example.com")
		require.NoError(t, err)
		return app.ID
	}

	t.Run("creator hires once", func(t *testing.T) {
		appID := apply("clipper-a")
		require.NoError(t, service.UpdateApplicationStatus(as("creator-1"), ApplicationStatusInput{AppID: appID, Status: domain.ApplicationStatusHired}))
		assert.Equal(t, domain.ApplicationStatusHired, repo.application(appID).Status)

		err := service.UpdateApplicationStatus(as("creator-1"), ApplicationStatusInput{AppID: appID, Status: domain.ApplicationStatusRejected})
		assert.ErrorIs(t, err, ErrApplicationNotFound)
		assert.Equal(t, domain.ApplicationStatusHired, repo.application(appID).Status)
	})

	t.Run("other creator cannot decide", func(t *testing.T) {
		appID := apply("clipper-b")
		err := service.UpdateApplicationStatus(as("creator-2"), ApplicationStatusInput{AppID: appID, Status: domain.ApplicationStatusRejected})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, domain.ApplicationStatusApplied, repo.application(appID).Status)
	})

	t.Run("admin decides any job", func(t *testing.T) {
		appID := apply("clipper-c")
		require.NoError(t, service.UpdateApplicationStatus(as("boss"), ApplicationStatusInput{AppID: appID, Status: domain.ApplicationStatusRejected}))
		assert.Equal(t, domain.ApplicationStatusRejected, repo.application(appID).Status)
	})

	t.Run("plain user is rejected", func(t *testing.T) {
		appID := apply("clipper-d")
		err := service.UpdateApplicationStatus(as("clipper-a"), ApplicationStatusInput{AppID: appID, Status: domain.ApplicationStatusHired})
		assert.ErrorIs(t, err, domain.ErrNotAuthorized)
	})

	t.Run("status back to applied is invalid", func(t *testing.T) {
		appID := apply("clipper-e")
		err := service.UpdateApplicationStatus(as("creator-1"), ApplicationStatusInput{AppID: appID, Status: domain.ApplicationStatusApplied})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestDeleteJob_Ownership(t *testing.T) {
	repo := newMockRepository()
	repo.setRole("creator-1", domain.RoleCreator)
	repo.setRole("creator-2", domain.RoleCreator)
	job := repo.seedJob(domain.ClippingJob{CreatedBy: "creator-1", IsActive: true})
	service, _ := newTestService(repo)

	err := service.DeleteJob(as("creator-2"), DeleteJobInput{ID: job.ID})
	assert.ErrorIs(t, err, ErrJobNotFound)
	assert.Equal(t, 1, repo.jobCount())

	require.NoError(t, service.DeleteJob(as("creator-1"), DeleteJobInput{ID: job.ID}))
	assert.Equal(t, 0, repo.jobCount())
}

func TestSetActive(t *testing.T) {
	repo := newMockRepository()
	job := repo.seedJob(domain.ClippingJob{CreatedBy: "creator-1", IsActive: true})
	service, reg := newTestService(repo)

	_, err := service.SetActive(as("intruder"), job.ID, false)
	assert.ErrorIs(t, err, ErrJobNotFound)

	updated, err := service.SetActive(as("creator-1"), job.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	v, _ := reg.Version(context.Background(), "/clipping/"+job.ID)
	assert.Equal(t, uint64(1), v)
}

func TestGetPublicJob_HidesInactive(t *testing.T) {
	repo := newMockRepository()
	job := repo.seedJob(domain.ClippingJob{CreatedBy: "creator-1", IsActive: false})
	service, _ := newTestService(repo)

	_, err := service.GetPublicJob(context.Background(), job.ID, "")
	assert.ErrorIs(t, err, ErrJobNotFound)

	v, err := service.GetJobView(context.Background(), job.ID, "creator-1")
	require.NoError(t, err)
	assert.True(t, v.IsCreator)
	assert.False(t, v.HasApplied)
}

func TestManage(t *testing.T) {
	repo := newMockRepository()
	repo.setRole("creator-1", domain.RoleCreator)
	repo.setRole("creator-2", domain.RoleCreator)
	job := repo.seedJob(domain.ClippingJob{CreatedBy: "creator-1", IsActive: true})
	_, err := repo.Apply(context.Background(), job.ID, "clipper", "clipper@example.com")
	require.NoError(t, err)
	service, _ := newTestService(repo)

	mv, err := service.Manage(as("creator-1"), job.ID)
	require.NoError(t, err)
	assert.Len(t, mv.Applications, 1)

	_, err = service.Manage(as("creator-2"), job.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)

	_, err = service.Manage(as("clipper"), job.ID)
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)
}

func TestCanCreate(t *testing.T) {
	repo := newMockRepository()
	repo.setRole("creator-1", domain.RoleCreator)
	service, _ := newTestService(repo)

	ok, err := service.CanCreate(as("creator-1"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = service.CanCreate(as("clipper"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func rolePtr(r domain.Role) *domain.Role { return &r }
