// Package postgres provides PostgreSQL implementation of the courses repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/hustlehub/marketplace/internal/courses"
	"github.com/hustlehub/marketplace/internal/domain"
	"github.com/hustlehub/marketplace/internal/pkg/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	courseColumns        = `id, user_id, title, description, price, is_published, created_at`
	enrollmentConstraint = "enrollments_user_id_course_id_key"
)

// Repository implements the courses.Repository interface using PostgreSQL.
type Repository struct {
	db postgres.Querier
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a course.
func (r *Repository) Create(ctx context.Context, course *domain.Course) error {
	query := `
		INSERT INTO courses (user_id, title, description, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_published, created_at
	`
	err := r.db.QueryRow(ctx, query,
		course.UserID,
		course.Title,
		course.Description,
		course.Price,
	).Scan(&course.ID, &course.IsPublished, &course.CreatedAt)
	if err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Delete removes a course owned by ownerID.
func (r *Repository) Delete(ctx context.Context, id, ownerID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM courses WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		if postgres.IsInvalidInput(err) {
			return courses.ErrCourseNotFound
		}
		return fmt.Errorf("delete course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return courses.ErrCourseNotFound
	}
	return nil
}

// SetPublished updates the published flag of a course owned by ownerID.
func (r *Repository) SetPublished(ctx context.Context, id, ownerID string, published bool) (*domain.Course, error) {
	query := `
		UPDATE courses
		SET is_published = $3
		WHERE id = $1 AND user_id = $2
		RETURNING ` + courseColumns
	course, err := scanCourse(r.db.QueryRow(ctx, query, id, ownerID, published))
	if err != nil {
		return nil, fmt.Errorf("set published: %w", err)
	}
	return course, nil
}

// Enroll inserts an enrollment in a single statement that only matches a
// published course, so publication is checked at write time.
func (r *Repository) Enroll(ctx context.Context, userID, courseID string) (*domain.Enrollment, error) {
	query := `
		INSERT INTO enrollments (user_id, course_id)
		SELECT $1, c.id FROM courses c
		WHERE c.id = $2 AND c.is_published
		RETURNING id, user_id, course_id, created_at
	`
	var e domain.Enrollment
	err := r.db.QueryRow(ctx, query, userID, courseID).Scan(&e.ID, &e.UserID, &e.CourseID, &e.CreatedAt)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows), postgres.IsInvalidInput(err):
			return nil, courses.ErrCourseNotFound
		case postgres.IsUniqueViolation(err, enrollmentConstraint):
			return nil, courses.ErrAlreadyEnrolled
		}
		return nil, fmt.Errorf("enroll: %w", err)
	}
	return &e, nil
}

// GetByID retrieves a course regardless of its published state.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	course, err := scanCourse(r.db.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	return course, nil
}

// ListByOwner lists the courses of one owner, newest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Course, error) {
	return r.list(ctx, `SELECT `+courseColumns+` FROM courses WHERE user_id = $1 ORDER BY created_at DESC`, ownerID)
}

// ListPublished lists published courses, newest first.
func (r *Repository) ListPublished(ctx context.Context) ([]domain.Course, error) {
	return r.list(ctx, `SELECT `+courseColumns+` FROM courses WHERE is_published ORDER BY created_at DESC`)
}

// ListEnrolled lists the courses a user is enrolled in, most recent enrollment first.
func (r *Repository) ListEnrolled(ctx context.Context, userID string) ([]domain.Course, error) {
	query := `
		SELECT c.id, c.user_id, c.title, c.description, c.price, c.is_published, c.created_at
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		WHERE e.user_id = $1
		ORDER BY e.created_at DESC
	`
	return r.list(ctx, query, userID)
}

// IsEnrolled reports whether the user is enrolled in the course.
func (r *Repository) IsEnrolled(ctx context.Context, userID, courseID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM enrollments WHERE user_id = $1 AND course_id = $2)`,
		userID, courseID,
	).Scan(&exists)
	if err != nil {
		if postgres.IsInvalidInput(err) {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return exists, nil
}

// Count returns the number of courses.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM courses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count courses: %w", err)
	}
	return n, nil
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]domain.Course, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Course, 0)
	for rows.Next() {
		var c domain.Course
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.Description, &c.Price, &c.IsPublished, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate courses: %w", err)
	}
	return result, nil
}

// scanCourse scans one course row, mapping a missing row or malformed id to ErrCourseNotFound.
func scanCourse(row pgx.Row) (*domain.Course, error) {
	var c domain.Course
	err := row.Scan(&c.ID, &c.UserID, &c.Title, &c.Description, &c.Price, &c.IsPublished, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || postgres.IsInvalidInput(err) {
			return nil, courses.ErrCourseNotFound
		}
		return nil, err
	}
	return &c, nil
}
