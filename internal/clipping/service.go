package clipping

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hustlehub/marketplace/internal/action"
	"github.com/hustlehub/marketplace/internal/domain"
)

// Paths lists the pages refreshed after any clipping change.
var Paths = []string{"/dashboard/clipping", "/dashboard/clipping/my", "/clipping", "/dashboard"}

// CreatorRoles may post and manage clipping jobs.
var CreatorRoles = []domain.Role{domain.RoleCreator, domain.RoleAdmin}

// JobPaths returns the detail pages of one job.
func JobPaths(id string) []string {
	return []string{"/clipping/" + id, "/dashboard/clipping/" + id, "/dashboard/clipping/" + id + "/manage"}
}

func pathsFor(id string) []string {
	paths := make([]string, 0, len(Paths)+3)
	paths = append(paths, Paths...)
	return append(paths, JobPaths(id)...)
}

// Gate is the subset of the authorization gate used by clipping.
type Gate interface {
	RequireAuthenticated(ctx context.Context) (*domain.User, error)
	RequireRoleIn(ctx context.Context, roles ...domain.Role) (*domain.Principal, error)
}

// Service implements clipping job operations.
type Service struct {
	repo   Repository
	gate   Gate
	runner *action.Runner
}

// NewService creates a new clipping service.
func NewService(repo Repository, gate Gate, runner *action.Runner) *Service {
	return &Service{
		repo:   repo,
		gate:   gate,
		runner: runner,
	}
}

// CreateJobInput is the new-job form.
type CreateJobInput struct {
	Title       string  `form:"title" validate:"notblank,max=200"`
	Description string  `form:"description" validate:"max=5000"`
	Platform    string  `form:"platform" validate:"notblank,max=50"`
	Reward      float64 `form:"reward" validate:"gte=0,lte=99999999.99"`
}

// CreateJob posts an open, active job created by the caller.
// Only creators and admins may post.
func (s *Service) CreateJob(ctx context.Context, input CreateJobInput) (*domain.ClippingJob, error) {
	var job *domain.ClippingJob
	err := s.runner.Run(ctx, action.Mutation{
		Name:       "createClippingJob",
		Input:      input,
		Invalidate: Paths,
	}, func(ctx context.Context) error {
		principal, err := s.gate.RequireRoleIn(ctx, CreatorRoles...)
		if err != nil {
			return err
		}

		j := &domain.ClippingJob{
			CreatedBy:   principal.ID,
			Title:       strings.TrimSpace(input.Title),
			Description: strings.TrimSpace(input.Description),
			Platform:    strings.TrimSpace(input.Platform),
			Reward:      input.Reward,
			Status:      domain.JobStatusOpen,
			IsActive:    true,
		}
		if err := s.repo.CreateJob(ctx, j, CreatorRoles); err != nil {
			return fmt.Errorf("create job: %w", err)
		}
		job = j
		return nil
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// JobIDInput identifies a job in a form.
type JobIDInput struct {
	JobID string `form:"jobId" validate:"notblank"`
}

// Apply records the caller's application to an open, active job.
func (s *Service) Apply(ctx context.Context, input JobIDInput) error {
	return s.runner.Run(ctx, action.Mutation{
		Name:       "applyForClippingJob",
		Input:      input,
		Invalidate: pathsFor(input.JobID),
	}, func(ctx context.Context) error {
		user, err := s.gate.RequireAuthenticated(ctx)
		if err != nil {
			return err
		}
		_, err = s.repo.Apply(ctx, input.JobID, user.ID, user.Email)
		return err
	})
}

// ApplicationStatusInput is the hire/reject form.
type ApplicationStatusInput struct {
	AppID  string                   `form:"appId" validate:"notblank"`
	Status domain.ApplicationStatus `form:"status" validate:"oneof=hired rejected"`
}

// UpdateApplicationStatus hires or rejects an application. Only the job's
// creator or an admin may decide, and only once.
func (s *Service) UpdateApplicationStatus(ctx context.Context, input ApplicationStatusInput) error {
	return s.runner.Run(ctx, action.Mutation{
		Name:       "updateApplicationStatus",
		Input:      input,
		Invalidate: Paths,
	}, func(ctx context.Context) error {
		principal, err := s.gate.RequireRoleIn(ctx, CreatorRoles...)
		if err != nil {
			return err
		}
		asAdmin := principal.Role == domain.RoleAdmin
		_, err = s.repo.DecideApplication(ctx, input.AppID, principal.ID, asAdmin, input.Status)
		return err
	})
}

// DeleteJobInput is the delete-job form.
type DeleteJobInput struct {
	ID string `form:"id" validate:"notblank"`
}

// DeleteJob deletes one of the caller's jobs.
func (s *Service) DeleteJob(ctx context.Context, input DeleteJobInput) error {
	return s.runner.Run(ctx, action.Mutation{
		Name:       "deleteClippingJob",
		Input:      input,
		Invalidate: pathsFor(input.ID),
	}, func(ctx context.Context) error {
		principal, err := s.gate.RequireRoleIn(ctx, CreatorRoles...)
		if err != nil {
			return err
		}
		return s.repo.DeleteJob(ctx, input.ID, principal.ID)
	})
}

// SetActive is the API toggle for the active flag of one of the caller's jobs.
func (s *Service) SetActive(ctx context.Context, id string, active bool) (*domain.ClippingJob, error) {
	var job *domain.ClippingJob
	err := s.runner.Run(ctx, action.Mutation{
		Name:       "setClippingJobActive",
		Invalidate: pathsFor(id),
	}, func(ctx context.Context) error {
		user, err := s.gate.RequireAuthenticated(ctx)
		if err != nil {
			return err
		}
		job, err = s.repo.SetActive(ctx, id, user.ID, active)
		return err
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// ListJobs returns every job, newest first.
func (s *Service) ListJobs(ctx context.Context) ([]domain.ClippingJob, error) {
	return s.repo.ListJobs(ctx, JobFilter{})
}

// ListActive returns the public job board.
func (s *Service) ListActive(ctx context.Context) ([]domain.ClippingJob, error) {
	return s.repo.ListJobs(ctx, JobFilter{ActiveOnly: true})
}

// ListMine returns the jobs created by creatorID.
func (s *Service) ListMine(ctx context.Context, creatorID string) ([]domain.ClippingJob, error) {
	return s.repo.ListJobs(ctx, JobFilter{CreatedBy: creatorID})
}

// GetJob returns a job regardless of its active flag.
func (s *Service) GetJob(ctx context.Context, id string) (*domain.ClippingJob, error) {
	return s.repo.GetJob(ctx, id)
}

// JobView is a job as seen by one viewer.
type JobView struct {
	Job        *domain.ClippingJob `json:"job"`
	HasApplied bool                `json:"has_applied"`
	IsCreator  bool                `json:"is_creator"`
}

// GetPublicJob returns an active job for the public board. Inactive jobs are
// reported as ErrJobNotFound.
func (s *Service) GetPublicJob(ctx context.Context, id, viewerID string) (*JobView, error) {
	job, err := s.repo.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if !job.IsActive {
		return nil, ErrJobNotFound
	}
	return s.viewFor(ctx, job, viewerID)
}

// GetJobView returns a job with the viewer's relation to it.
func (s *Service) GetJobView(ctx context.Context, id, viewerID string) (*JobView, error) {
	job, err := s.repo.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.viewFor(ctx, job, viewerID)
}

func (s *Service) viewFor(ctx context.Context, job *domain.ClippingJob, viewerID string) (*JobView, error) {
	v := &JobView{Job: job, IsCreator: viewerID != "" && job.CreatedBy == viewerID}
	if viewerID != "" {
		applied, err := s.repo.HasApplied(ctx, job.ID, viewerID)
		if err != nil {
			return nil, fmt.Errorf("check application: %w", err)
		}
		v.HasApplied = applied
	}
	return v, nil
}

// ListApplications returns the applicants of a job. The principal must have
// created the job or be an admin; other jobs are reported as ErrJobNotFound.
func (s *Service) ListApplications(ctx context.Context, principal *domain.Principal, jobID string) ([]domain.ClippingApplication, error) {
	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.CreatedBy != principal.ID && principal.Role != domain.RoleAdmin {
		return nil, ErrJobNotFound
	}
	return s.repo.ListApplications(ctx, jobID)
}

// ListMyApplications returns the caller's applications with job titles.
func (s *Service) ListMyApplications(ctx context.Context, applicantID string) ([]domain.ClippingApplication, error) {
	return s.repo.ListApplicationsByApplicant(ctx, applicantID)
}

// CountJobs returns the total number of jobs.
func (s *Service) CountJobs(ctx context.Context) (int, error) {
	return s.repo.CountJobs(ctx)
}

// Creator returns the session user when they may post and manage jobs.
func (s *Service) Creator(ctx context.Context) (*domain.Principal, error) {
	return s.gate.RequireRoleIn(ctx, CreatorRoles...)
}

// CanCreate reports whether the session user may post jobs.
func (s *Service) CanCreate(ctx context.Context) (bool, error) {
	_, err := s.Creator(ctx)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotAuthorized), errors.Is(err, domain.ErrNotAuthenticated):
		return false, nil
	default:
		return false, err
	}
}

// ManageView is a job with its applicants, as shown to the job's creator.
type ManageView struct {
	Job          *domain.ClippingJob          `json:"job"`
	Applications []domain.ClippingApplication `json:"applications"`
}

// Manage returns a job and its applications for a creator or admin.
func (s *Service) Manage(ctx context.Context, jobID string) (*ManageView, error) {
	principal, err := s.gate.RequireRoleIn(ctx, CreatorRoles...)
	if err != nil {
		return nil, err
	}
	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.CreatedBy != principal.ID && principal.Role != domain.RoleAdmin {
		return nil, ErrJobNotFound
	}
	apps, err := s.repo.ListApplications(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return &ManageView{Job: job, Applications: apps}, nil
}
