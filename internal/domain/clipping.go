package domain

import "time"

// JobStatus is the lifecycle label of a clipping job.
type JobStatus string

const (
	JobStatusOpen   JobStatus = "open"
	JobStatusClosed JobStatus = "closed"
)

// ClippingJob is a paid clipping gig posted by a creator.
type ClippingJob struct {
	ID          string    `json:"id"`
	CreatedBy   string    `json:"created_by"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Platform    string    `json:"platform"`
	Reward      float64   `json:"reward"`
	Status      JobStatus `json:"status"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// ApplicationStatus is the state of a clipping application.
type ApplicationStatus string

const (
	ApplicationStatusApplied  ApplicationStatus = "applied"
	ApplicationStatusHired    ApplicationStatus = "hired"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// IsValid reports whether s is a known application status.
func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationStatusApplied, ApplicationStatusHired, ApplicationStatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed from s.
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationStatusHired || s == ApplicationStatusRejected
}

// CanTransitionTo reports whether s may move to next.
// The only allowed transitions are applied -> hired and applied -> rejected.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	return s == ApplicationStatusApplied && next.IsTerminal()
}

// ClippingApplication is a user's application to a clipping job.
type ClippingApplication struct {
	ID          string            `json:"id"`
	JobID       string            `json:"job_id"`
	ApplicantID string            `json:"applicant_id"`
	Email       string            `json:"email,omitempty"`
	JobTitle    string            `json:"job_title,omitempty"`
	Status      ApplicationStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
}
