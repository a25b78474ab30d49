package courses

import (
	"context"

	"github.com/hustlehub/marketplace/internal/domain"
)

// Repository defines the interface for course data operations.
// Writes that touch an existing row are scoped by owner; a zero-row result
// is reported as ErrCourseNotFound whether the row is missing or foreign.
type Repository interface {
	Create(ctx context.Context, course *domain.Course) error
	Delete(ctx context.Context, id, ownerID string) error
	SetPublished(ctx context.Context, id, ownerID string, published bool) (*domain.Course, error)

	// Enroll inserts an enrollment only if the course is published at write time.
	Enroll(ctx context.Context, userID, courseID string) (*domain.Enrollment, error)

	GetByID(ctx context.Context, id string) (*domain.Course, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Course, error)
	ListPublished(ctx context.Context) ([]domain.Course, error)
	ListEnrolled(ctx context.Context, userID string) ([]domain.Course, error)
	IsEnrolled(ctx context.Context, userID, courseID string) (bool, error)
	Count(ctx context.Context) (int, error)
}
