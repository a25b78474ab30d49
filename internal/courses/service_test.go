package courses

import (
	"context"
	"math"
	"testing"

	"github.com/hustlehub/marketplace/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCourse(t *testing.T) {
	repo := newMockRepository()
	service, reg := newTestService(repo)

	course, err := service.CreateCourse(as("owner"), CreateCourseInput{
		Title:       "  Short-form editing ",
		Description: "Cuts, captions, hooks",
		Price:       49.5,
	})
	require.NoError(t, err)

	assert.Equal(t, "owner", course.UserID)
	assert.Equal(t, "Short-form editing", course.Title)
	assert.False(t, course.IsPublished)
	assert.Equal(t, 1, repo.writes)

	for _, p := range Paths {
		v, _ := reg.Version(context.Background(), p)
		assert.Equal(t, uint64(1), v, p)
	}
}

func TestCreateCourse_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		ctx     context.Context
		input   CreateCourseInput
		wantErr error
	}{
		{name: "anonymous", ctx: context.Background(), input: CreateCourseInput{Title: "x"}, wantErr: domain.ErrNotAuthenticated},
		{name: "missing title", ctx: as("owner"), input: CreateCourseInput{Title: " "}, wantErr: domain.ErrValidation},
		{name: "negative price", ctx: as("owner"), input: CreateCourseInput{Title: "x", Price: -1}, wantErr: domain.ErrValidation},
		{name: "price beyond column precision", ctx: as("owner"), input: CreateCourseInput{Title: "x", Price: 1e12}, wantErr: domain.ErrValidation},
		{name: "infinite price", ctx: as("owner"), input: CreateCourseInput{Title: "x", Price: math.Inf(1)}, wantErr: domain.ErrValidation},
		{name: "NaN price", ctx: as("owner"), input: CreateCourseInput{Title: "x", Price: math.NaN()}, wantErr: domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockRepository()
			service, reg := newTestService(repo)

			_, err := service.CreateCourse(tt.ctx, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, repo.writes)

			v, _ := reg.Version(context.Background(), "/courses")
			assert.Equal(t, uint64(0), v)
		})
	}
}

func TestEnroll_Twice(t *testing.T) {
	repo := newMockRepository()
	service, _ := newTestService(repo)
	course := repo.seed(domain.Course{UserID: "owner", Title: "Hooks 101", IsPublished: true})

	require.NoError(t, service.Enroll(as("student"), CourseIDInput{CourseID: course.ID}))

	err := service.Enroll(as("student"), CourseIDInput{CourseID: course.ID})
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 1, repo.enrollmentCount())
}

func TestEnroll_Unpublished(t *testing.T) {
	repo := newMockRepository()
	service, reg := newTestService(repo)
	course := repo.seed(domain.Course{UserID: "owner", Title: "Draft"})

	err := service.Enroll(as("student"), CourseIDInput{CourseID: course.ID})
	assert.ErrorIs(t, err, ErrCourseNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, repo.enrollmentCount())

	v, _ := reg.Version(context.Background(), CoursePath(course.ID))
	assert.Equal(t, uint64(0), v)
}

func TestEnroll_InvalidatesCoursePage(t *testing.T) {
	repo := newMockRepository()
	service, reg := newTestService(repo)
	course := repo.seed(domain.Course{UserID: "owner", Title: "Hooks 101", IsPublished: true})

	require.NoError(t, service.Enroll(as("student"), CourseIDInput{CourseID: course.ID}))

	v, _ := reg.Version(context.Background(), CoursePath(course.ID))
	assert.Equal(t, uint64(1), v)
}

func TestEnroll_Anonymous(t *testing.T) {
	repo := newMockRepository()
	service, _ := newTestService(repo)
	course := repo.seed(domain.Course{UserID: "owner", IsPublished: true})

	err := service.Enroll(context.Background(), CourseIDInput{CourseID: course.ID})
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	assert.Equal(t, 0, repo.enrollmentCount())
}

func TestDeleteCourse_OwnerScoped(t *testing.T) {
	repo := newMockRepository()
	service, _ := newTestService(repo)
	course := repo.seed(domain.Course{UserID: "owner", Title: "Mine"})

	err := service.DeleteCourse(as("intruder"), CourseIDInput{CourseID: course.ID})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, repo.writes)
	_, err = repo.GetByID(context.Background(), course.ID)
	require.NoError(t, err, "non-owner delete must leave the row")

	require.NoError(t, service.DeleteCourse(as("owner"), CourseIDInput{CourseID: course.ID}))
	assert.Equal(t, 1, repo.writes)
	_, err = repo.GetByID(context.Background(), course.ID)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestTogglePublish(t *testing.T) {
	repo := newMockRepository()
	service, _ := newTestService(repo)
	course := repo.seed(domain.Course{UserID: "owner", Title: "Mine"})

	err := service.TogglePublish(as("intruder"), TogglePublishInput{CourseID: course.ID, NextState: true})
	assert.ErrorIs(t, err, ErrCourseNotFound)

	require.NoError(t, service.TogglePublish(as("owner"), TogglePublishInput{CourseID: course.ID, NextState: true}))
	got, _ := repo.GetByID(context.Background(), course.ID)
	assert.True(t, got.IsPublished)
}

func TestSetPublished(t *testing.T) {
	repo := newMockRepository()
	service, reg := newTestService(repo)
	course := repo.seed(domain.Course{UserID: "owner", Title: "Mine", IsPublished: true})

	updated, err := service.SetPublished(as("owner"), course.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsPublished)

	v, _ := reg.Version(context.Background(), "/dashboard/courses")
	assert.Equal(t, uint64(1), v)

	_, err = service.SetPublished(context.Background(), course.ID, true)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestGetVisible(t *testing.T) {
	repo := newMockRepository()
	service, _ := newTestService(repo)
	draft := repo.seed(domain.Course{UserID: "owner", Title: "Draft"})
	live := repo.seed(domain.Course{UserID: "owner", Title: "Live", IsPublished: true})

	_, err := service.GetVisible(context.Background(), draft.ID, "")
	assert.ErrorIs(t, err, ErrCourseNotFound)

	_, err = service.GetVisible(context.Background(), draft.ID, "someone")
	assert.ErrorIs(t, err, ErrCourseNotFound)

	v, err := service.GetVisible(context.Background(), draft.ID, "owner")
	require.NoError(t, err)
	assert.True(t, v.IsOwner)

	require.NoError(t, service.Enroll(as("student"), CourseIDInput{CourseID: live.ID}))
	v, err = service.GetVisible(context.Background(), live.ID, "student")
	require.NoError(t, err)
	assert.False(t, v.IsOwner)
	assert.True(t, v.IsEnrolled)
}
