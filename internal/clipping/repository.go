package clipping

import (
	"context"

	"github.com/hustlehub/marketplace/internal/domain"
)

// Repository defines the interface for clipping data operations.
type Repository interface {
	// CreateJob inserts the job only while the creator's profile still holds
	// one of roles; otherwise it returns ErrCreatorRoleRequired and writes nothing.
	CreateJob(ctx context.Context, job *domain.ClippingJob, roles []domain.Role) error
	DeleteJob(ctx context.Context, id, creatorID string) error
	SetActive(ctx context.Context, id, creatorID string, active bool) (*domain.ClippingJob, error)

	// Apply inserts an application only for an open, active job.
	Apply(ctx context.Context, jobID, applicantID, email string) (*domain.ClippingApplication, error)
	// DecideApplication moves an application out of "applied". It matches only
	// rows whose job was created by actorID, unless asAdmin is set.
	DecideApplication(ctx context.Context, appID, actorID string, asAdmin bool, status domain.ApplicationStatus) (*domain.ClippingApplication, error)

	GetJob(ctx context.Context, id string) (*domain.ClippingJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]domain.ClippingJob, error)
	ListApplications(ctx context.Context, jobID string) ([]domain.ClippingApplication, error)
	ListApplicationsByApplicant(ctx context.Context, applicantID string) ([]domain.ClippingApplication, error)
	HasApplied(ctx context.Context, jobID, applicantID string) (bool, error)
	CountJobs(ctx context.Context) (int, error)
}

// JobFilter represents filter criteria for listing jobs.
type JobFilter struct {
	ActiveOnly bool
	CreatedBy  string
}
