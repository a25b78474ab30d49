package courses

import (
	"context"
	"fmt"
	"strings"

	"github.com/hustlehub/marketplace/internal/action"
	"github.com/hustlehub/marketplace/internal/domain"
)

// Paths lists the pages refreshed after any course change.
var Paths = []string{"/dashboard/courses", "/courses", "/dashboard"}

// CoursePath returns the public detail page of a course.
func CoursePath(id string) string {
	return "/courses/" + id
}

func pathsFor(id string) []string {
	paths := make([]string, 0, len(Paths)+1)
	paths = append(paths, Paths...)
	return append(paths, CoursePath(id))
}

// Gate is the subset of the authorization gate used by courses.
type Gate interface {
	RequireAuthenticated(ctx context.Context) (*domain.User, error)
	OptionalUser(ctx context.Context) *domain.User
}

// Service implements course operations.
type Service struct {
	repo   Repository
	gate   Gate
	runner *action.Runner
}

// NewService creates a new course service.
func NewService(repo Repository, gate Gate, runner *action.Runner) *Service {
	return &Service{
		repo:   repo,
		gate:   gate,
		runner: runner,
	}
}

// CreateCourseInput is the new-course form.
type CreateCourseInput struct {
	Title       string  `form:"title" validate:"notblank,max=200"`
	Description string  `form:"description" validate:"max=5000"`
	Price       float64 `form:"price" validate:"gte=0,lte=99999999.99"`
}

// CreateCourse creates an unpublished course owned by the caller.
func (s *Service) CreateCourse(ctx context.Context, input CreateCourseInput) (*domain.Course, error) {
	var course *domain.Course
	err := s.runner.Run(ctx, action.Mutation{
		Name:       "createCourse",
		Input:      input,
		Invalidate: Paths,
	}, func(ctx context.Context) error {
		user, err := s.gate.RequireAuthenticated(ctx)
		if err != nil {
			return err
		}

		c := &domain.Course{
			UserID:      user.ID,
			Title:       strings.TrimSpace(input.Title),
			Description: strings.TrimSpace(input.Description),
			Price:       input.Price,
		}
		if err := s.repo.Create(ctx, c); err != nil {
			return fmt.Errorf("create course: %w", err)
		}
		course = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return course, nil
}

// CourseIDInput identifies a course in a form.
type CourseIDInput struct {
	CourseID string `form:"courseId" validate:"notblank"`
}

// DeleteCourse deletes one of the caller's courses.
func (s *Service) DeleteCourse(ctx context.Context, input CourseIDInput) error {
	return s.runner.Run(ctx, action.Mutation{
		Name:       "deleteCourse",
		Input:      input,
		Invalidate: Paths,
	}, func(ctx context.Context) error {
		user, err := s.gate.RequireAuthenticated(ctx)
		if err != nil {
			return err
		}
		return s.repo.Delete(ctx, input.CourseID, user.ID)
	})
}

// TogglePublishInput is the publish toggle form.
type TogglePublishInput struct {
	CourseID  string `form:"courseId" validate:"notblank"`
	NextState bool   `form:"nextState"`
}

// TogglePublish sets the published flag of one of the caller's courses.
func (s *Service) TogglePublish(ctx context.Context, input TogglePublishInput) error {
	return s.runner.Run(ctx, action.Mutation{
		Name:       "toggleCoursePublish",
		Input:      input,
		Invalidate: pathsFor(input.CourseID),
	}, func(ctx context.Context) error {
		user, err := s.gate.RequireAuthenticated(ctx)
		if err != nil {
			return err
		}
		_, err = s.repo.SetPublished(ctx, input.CourseID, user.ID, input.NextState)
		return err
	})
}

// SetPublished is the API toggle. It returns the updated course.
func (s *Service) SetPublished(ctx context.Context, id string, published bool) (*domain.Course, error) {
	var course *domain.Course
	err := s.runner.Run(ctx, action.Mutation{
		Name:       "setCoursePublished",
		Invalidate: pathsFor(id),
	}, func(ctx context.Context) error {
		user, err := s.gate.RequireAuthenticated(ctx)
		if err != nil {
			return err
		}
		course, err = s.repo.SetPublished(ctx, id, user.ID, published)
		return err
	})
	if err != nil {
		return nil, err
	}
	return course, nil
}

// Enroll enrolls the caller in a published course.
// Unpublished and missing courses both fail with ErrCourseNotFound;
// a second enrollment fails with ErrAlreadyEnrolled.
func (s *Service) Enroll(ctx context.Context, input CourseIDInput) error {
	return s.runner.Run(ctx, action.Mutation{
		Name:       "enroll",
		Input:      input,
		Invalidate: pathsFor(input.CourseID),
	}, func(ctx context.Context) error {
		user, err := s.gate.RequireAuthenticated(ctx)
		if err != nil {
			return err
		}
		_, err = s.repo.Enroll(ctx, user.ID, input.CourseID)
		return err
	})
}

// ListMine returns courses owned by ownerID, newest first.
func (s *Service) ListMine(ctx context.Context, ownerID string) ([]domain.Course, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// ListPublished returns every published course, newest first.
func (s *Service) ListPublished(ctx context.Context) ([]domain.Course, error) {
	return s.repo.ListPublished(ctx)
}

// ListEnrolled returns courses userID is enrolled in.
func (s *Service) ListEnrolled(ctx context.Context, userID string) ([]domain.Course, error) {
	return s.repo.ListEnrolled(ctx, userID)
}

// CourseView is a course as seen by one viewer.
type CourseView struct {
	Course     *domain.Course `json:"course"`
	IsOwner    bool           `json:"is_owner"`
	IsEnrolled bool           `json:"is_enrolled"`
}

// GetVisible returns a course if viewerID may see it. Unpublished courses of
// other owners are reported as ErrCourseNotFound.
func (s *Service) GetVisible(ctx context.Context, id, viewerID string) (*CourseView, error) {
	course, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !course.VisibleTo(viewerID) {
		return nil, ErrCourseNotFound
	}

	v := &CourseView{Course: course, IsOwner: viewerID != "" && course.UserID == viewerID}
	if viewerID != "" {
		enrolled, err := s.repo.IsEnrolled(ctx, viewerID, id)
		if err != nil {
			return nil, fmt.Errorf("check enrollment: %w", err)
		}
		v.IsEnrolled = enrolled
	}
	return v, nil
}

// Count returns the total number of courses.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
