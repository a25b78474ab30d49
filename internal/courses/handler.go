package courses

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hustlehub/marketplace/internal/domain"
	"github.com/hustlehub/marketplace/internal/pkg/httputil"
	"github.com/hustlehub/marketplace/internal/view"
)

// Handler handles HTTP requests for courses.
type Handler struct {
	service *Service
	pages   *view.Cache
}

// NewHandler creates a new courses handler.
func NewHandler(service *Service, pages *view.Cache) *Handler {
	return &Handler{service: service, pages: pages}
}

// RegisterActionRoutes registers course form actions.
func (h *Handler) RegisterActionRoutes(r chi.Router) {
	r.Post("/actions/courses", h.CreateCourse)
	r.Post("/actions/courses/delete", h.DeleteCourse)
	r.Post("/actions/courses/toggle-publish", h.TogglePublish)
	r.Post("/actions/courses/enroll", h.Enroll)
}

// RegisterAPIRoutes registers the publish toggle endpoint.
func (h *Handler) RegisterAPIRoutes(r chi.Router) {
	r.Post("/api/courses/{id}/toggle-publish", h.TogglePublishAPI)
}

// RegisterPageRoutes registers course pages that require a session.
func (h *Handler) RegisterPageRoutes(r chi.Router) {
	r.Get("/dashboard/courses", h.DashboardPage)
	r.Get("/dashboard/courses/{id}", h.DashboardCoursePage)
}

// RegisterPublicPageRoutes registers the public catalog pages.
func (h *Handler) RegisterPublicPageRoutes(r chi.Router) {
	r.Get("/courses", h.CatalogPage)
	r.Get("/courses/{id}", h.CoursePage)
}

// CreateCourse handles POST /actions/courses.
func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	price, err := httputil.FormFloat(r, "price")
	if err != nil {
		httputil.HandleActionError(w, r, err)
		return
	}

	_, err = h.service.CreateCourse(r.Context(), CreateCourseInput{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Price:       price,
	})
	if err != nil {
		httputil.HandleActionError(w, r, err)
		return
	}
	httputil.Redirect(w, r, "/dashboard/courses")
}

// DeleteCourse handles POST /actions/courses/delete.
func (h *Handler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteCourse(r.Context(), CourseIDInput{CourseID: r.PostFormValue("courseId")})
	if err != nil {
		httputil.HandleActionError(w, r, err)
		return
	}
	httputil.Redirect(w, r, "/dashboard/courses")
}

// TogglePublish handles POST /actions/courses/toggle-publish.
func (h *Handler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	err := h.service.TogglePublish(r.Context(), TogglePublishInput{
		CourseID:  r.PostFormValue("courseId"),
		NextState: httputil.FormBool(r, "nextState"),
	})
	if err != nil {
		httputil.HandleActionError(w, r, err)
		return
	}
	httputil.Redirect(w, r, "/dashboard/courses")
}

// Enroll handles POST /actions/courses/enroll.
func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	courseID := r.PostFormValue("courseId")
	if err := h.service.Enroll(r.Context(), CourseIDInput{CourseID: courseID}); err != nil {
		httputil.HandleActionError(w, r, err)
		return
	}
	httputil.Redirect(w, r, CoursePath(courseID))
}

// TogglePublishRequest is the body of the publish toggle endpoint.
type TogglePublishRequest struct {
	Published *bool `json:"published"`
}

// TogglePublishAPI handles POST /api/courses/{id}/toggle-publish.
func (h *Handler) TogglePublishAPI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if httputil.UserFromContext(ctx) == nil {
		httputil.HandleToggleError(ctx, w, domain.ErrNotAuthenticated, "")
		return
	}

	var req TogglePublishRequest
	if err := httputil.DecodeJSON(r, &req); err != nil || req.Published == nil {
		httputil.HandleToggleError(ctx, w, domain.ErrValidation, "")
		return
	}

	course, err := h.service.SetPublished(ctx, chi.URLParam(r, "id"), *req.Published)
	if err != nil {
		httputil.HandleToggleError(ctx, w, err, "Course not found")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"course":  course,
	})
}

// DashboardPageData is the data of the course dashboard.
type DashboardPageData struct {
	Courses  []domain.Course `json:"courses"`
	Enrolled []domain.Course `json:"enrolled"`
}

// DashboardPage handles GET /dashboard/courses.
func (h *Handler) DashboardPage(w http.ResponseWriter, r *http.Request) {
	user := httputil.UserFromContext(r.Context())
	if user == nil {
		httputil.Redirect(w, r, httputil.SignInPath)
		return
	}

	h.render(w, r, view.Page{Path: "/dashboard/courses", Viewer: user.ID}, func(ctx context.Context) (any, error) {
		mine, err := h.service.ListMine(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		enrolled, err := h.service.ListEnrolled(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		return DashboardPageData{Courses: mine, Enrolled: enrolled}, nil
	})
}

// DashboardCoursePage handles GET /dashboard/courses/{id}.
func (h *Handler) DashboardCoursePage(w http.ResponseWriter, r *http.Request) {
	user := httputil.UserFromContext(r.Context())
	if user == nil {
		httputil.Redirect(w, r, httputil.SignInPath)
		return
	}
	id := chi.URLParam(r, "id")

	page := view.Page{
		Path:      r.URL.Path,
		Viewer:    user.ID,
		DependsOn: []string{"/dashboard/courses", CoursePath(id)},
	}
	h.render(w, r, page, func(ctx context.Context) (any, error) {
		return h.service.GetVisible(ctx, id, user.ID)
	})
}

// CatalogPage handles GET /courses.
func (h *Handler) CatalogPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, view.Page{Path: "/courses"}, func(ctx context.Context) (any, error) {
		courses, err := h.service.ListPublished(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"courses": courses}, nil
	})
}

// CoursePage handles GET /courses/{id}.
func (h *Handler) CoursePage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	viewerID := httputil.GetUserID(r.Context())

	page := view.Page{Path: CoursePath(id), Viewer: viewerID, DependsOn: []string{"/courses"}}
	h.render(w, r, page, func(ctx context.Context) (any, error) {
		return h.service.GetVisible(ctx, id, viewerID)
	})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page view.Page, load view.LoadFunc) {
	data, err := h.pages.Render(r.Context(), page, load)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, httputil.DomainErrors)
		return
	}
	httputil.Success(w, http.StatusOK, data)
}
