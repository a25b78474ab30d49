// Package postgres provides PostgreSQL implementation of the clipping repository.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hustlehub/marketplace/internal/clipping"
	"github.com/hustlehub/marketplace/internal/domain"
	"github.com/hustlehub/marketplace/internal/pkg/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	jobColumns            = `id, created_by, title, description, platform, reward, status, is_active, created_at`
	applicationConstraint = "clipping_applications_job_id_applicant_id_key"
)

// Repository implements the clipping.Repository interface using PostgreSQL.
type Repository struct {
	db postgres.Querier
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateJob inserts a job in the same statement that re-checks the creator's
// role, so a role revoked after the gate ran cannot still post.
func (r *Repository) CreateJob(ctx context.Context, job *domain.ClippingJob, roles []domain.Role) error {
	allowed := make([]string, len(roles))
	for i, role := range roles {
		allowed[i] = string(role)
	}

	query := `
		INSERT INTO clipping_jobs (created_by, title, description, platform, reward, status, is_active)
		SELECT $1, $2, $3, $4, $5, $6, $7
		WHERE EXISTS (SELECT 1 FROM profiles WHERE id = $1 AND role = ANY($8))
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		job.CreatedBy,
		job.Title,
		job.Description,
		job.Platform,
		job.Reward,
		job.Status,
		job.IsActive,
		allowed,
	).Scan(&job.ID, &job.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return clipping.ErrCreatorRoleRequired
		}
		return fmt.Errorf("create clipping job: %w", err)
	}
	return nil
}

// DeleteJob removes a job created by creatorID.
func (r *Repository) DeleteJob(ctx context.Context, id, creatorID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM clipping_jobs WHERE id = $1 AND created_by = $2`, id, creatorID)
	if err != nil {
		if postgres.IsInvalidInput(err) {
			return clipping.ErrJobNotFound
		}
		return fmt.Errorf("delete clipping job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return clipping.ErrJobNotFound
	}
	return nil
}

// SetActive updates the active flag of a job created by creatorID.
func (r *Repository) SetActive(ctx context.Context, id, creatorID string, active bool) (*domain.ClippingJob, error) {
	query := `
		UPDATE clipping_jobs
		SET is_active = $3
		WHERE id = $1 AND created_by = $2
		RETURNING ` + jobColumns
	job, err := scanJob(r.db.QueryRow(ctx, query, id, creatorID, active))
	if err != nil {
		return nil, fmt.Errorf("set job active: %w", err)
	}
	return job, nil
}

// Apply inserts an application for an open, active job.
func (r *Repository) Apply(ctx context.Context, jobID, applicantID, email string) (*domain.ClippingApplication, error) {
	query := `
		INSERT INTO clipping_applications (job_id, applicant_id, email, status)
		SELECT j.id, $2, $3, 'applied' FROM clipping_jobs j
		WHERE j.id = $1 AND j.is_active AND j.status = 'open'
		RETURNING id, job_id, applicant_id, email, status, created_at
	`
	var a domain.ClippingApplication
	err := r.db.QueryRow(ctx, query, jobID, applicantID, email).Scan(
		&a.ID, &a.JobID, &a.ApplicantID, &a.Email, &a.Status, &a.CreatedAt,
	)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows), postgres.IsInvalidInput(err):
			return nil, clipping.ErrJobNotFound
		case postgres.IsUniqueViolation(err, applicationConstraint):
			return nil, clipping.ErrAlreadyApplied
		}
		return nil, fmt.Errorf("apply: %w", err)
	}
	return &a, nil
}

// DecideApplication sets a terminal status on an application that is still
// "applied" and belongs to a job created by actorID (any job when asAdmin).
func (r *Repository) DecideApplication(ctx context.Context, appID, actorID string, asAdmin bool, status domain.ApplicationStatus) (*domain.ClippingApplication, error) {
	query := `
		UPDATE clipping_applications a
		SET status = $2
		FROM clipping_jobs j
		WHERE a.id = $1
		  AND a.job_id = j.id
		  AND a.status = 'applied'
		  AND (j.created_by = $3 OR $4)
		RETURNING a.id, a.job_id, a.applicant_id, a.email, a.status, a.created_at, j.title
	`
	var a domain.ClippingApplication
	err := r.db.QueryRow(ctx, query, appID, status, actorID, asAdmin).Scan(
		&a.ID, &a.JobID, &a.ApplicantID, &a.Email, &a.Status, &a.CreatedAt, &a.JobTitle,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || postgres.IsInvalidInput(err) {
			return nil, clipping.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("decide application: %w", err)
	}
	return &a, nil
}

// GetJob retrieves a job by id.
func (r *Repository) GetJob(ctx context.Context, id string) (*domain.ClippingJob, error) {
	job, err := scanJob(r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM clipping_jobs WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get clipping job: %w", err)
	}
	return job, nil
}

// ListJobs lists jobs matching filter, newest first.
func (r *Repository) ListJobs(ctx context.Context, filter clipping.JobFilter) ([]domain.ClippingJob, error) {
	query := `SELECT ` + jobColumns + ` FROM clipping_jobs`

	var conditions []string
	var args []any
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active")
	}
	if filter.CreatedBy != "" {
		args = append(args, filter.CreatedBy)
		conditions = append(conditions, fmt.Sprintf("created_by = $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list clipping jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]domain.ClippingJob, 0)
	for rows.Next() {
		var j domain.ClippingJob
		if err := rows.Scan(&j.ID, &j.CreatedBy, &j.Title, &j.Description, &j.Platform, &j.Reward, &j.Status, &j.IsActive, &j.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan clipping job: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clipping jobs: %w", err)
	}
	return jobs, nil
}

// ListApplications lists the applications of one job, oldest first.
func (r *Repository) ListApplications(ctx context.Context, jobID string) ([]domain.ClippingApplication, error) {
	query := `
		SELECT a.id, a.job_id, a.applicant_id, a.email, a.status, a.created_at, j.title
		FROM clipping_applications a
		JOIN clipping_jobs j ON j.id = a.job_id
		WHERE a.job_id = $1
		ORDER BY a.created_at
	`
	return r.listApplications(ctx, query, jobID)
}

// ListApplicationsByApplicant lists one user's applications, newest first.
func (r *Repository) ListApplicationsByApplicant(ctx context.Context, applicantID string) ([]domain.ClippingApplication, error) {
	query := `
		SELECT a.id, a.job_id, a.applicant_id, a.email, a.status, a.created_at, j.title
		FROM clipping_applications a
		JOIN clipping_jobs j ON j.id = a.job_id
		WHERE a.applicant_id = $1
		ORDER BY a.created_at DESC
	`
	return r.listApplications(ctx, query, applicantID)
}

// HasApplied reports whether the applicant applied to the job.
func (r *Repository) HasApplied(ctx context.Context, jobID, applicantID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM clipping_applications WHERE job_id = $1 AND applicant_id = $2)`,
		jobID, applicantID,
	).Scan(&exists)
	if err != nil {
		if postgres.IsInvalidInput(err) {
			return false, nil
		}
		return false, fmt.Errorf("check application: %w", err)
	}
	return exists, nil
}

// CountJobs returns the number of jobs.
func (r *Repository) CountJobs(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM clipping_jobs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count clipping jobs: %w", err)
	}
	return n, nil
}

func (r *Repository) listApplications(ctx context.Context, query string, arg string) ([]domain.ClippingApplication, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		if postgres.IsInvalidInput(err) {
			return []domain.ClippingApplication{}, nil
		}
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	apps := make([]domain.ClippingApplication, 0)
	for rows.Next() {
		var a domain.ClippingApplication
		if err := rows.Scan(&a.ID, &a.JobID, &a.ApplicantID, &a.Email, &a.Status, &a.CreatedAt, &a.JobTitle); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return apps, nil
}

func scanJob(row pgx.Row) (*domain.ClippingJob, error) {
	var j domain.ClippingJob
	err := row.Scan(&j.ID, &j.CreatedBy, &j.Title, &j.Description, &j.Platform, &j.Reward, &j.Status, &j.IsActive, &j.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || postgres.IsInvalidInput(err) {
			return nil, clipping.ErrJobNotFound
		}
		return nil, err
	}
	return &j, nil
}
