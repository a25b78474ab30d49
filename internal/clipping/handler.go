package clipping

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hustlehub/marketplace/internal/domain"
	"github.com/hustlehub/marketplace/internal/pkg/httputil"
	"github.com/hustlehub/marketplace/internal/view"
)

const dashboardPath = "/dashboard/clipping"

// Handler handles HTTP requests for clipping jobs.
type Handler struct {
	service *Service
	pages   *view.Cache
}

// NewHandler creates a new clipping handler.
func NewHandler(service *Service, pages *view.Cache) *Handler {
	return &Handler{service: service, pages: pages}
}

// RegisterActionRoutes registers clipping form actions.
func (h *Handler) RegisterActionRoutes(r chi.Router) {
	r.Post("/actions/clipping", h.CreateJob)
	r.Post("/actions/clipping/apply", h.Apply)
	r.Post("/actions/clipping/applications/status", h.UpdateApplicationStatus)
	r.Post("/actions/clipping/delete", h.DeleteJob)
}

// RegisterAPIRoutes registers the active toggle endpoint.
func (h *Handler) RegisterAPIRoutes(r chi.Router) {
	r.Post("/api/clipping/{id}/toggle-active", h.ToggleActiveAPI)
}

// RegisterPageRoutes registers clipping pages that require a session.
func (h *Handler) RegisterPageRoutes(r chi.Router) {
	r.Get("/dashboard/clipping", h.DashboardPage)
	r.Get("/dashboard/clipping/my", h.MyPage)
	r.Get("/dashboard/clipping/{id}", h.DashboardJobPage)
}

// RegisterCreatorPageRoutes registers pages limited to creators and admins.
func (h *Handler) RegisterCreatorPageRoutes(r chi.Router) {
	r.Get("/dashboard/clipping/{id}/manage", h.ManagePage)
}

// RegisterPublicPageRoutes registers the public job board.
func (h *Handler) RegisterPublicPageRoutes(r chi.Router) {
	r.Get("/clipping", h.BoardPage)
	r.Get("/clipping/{id}", h.JobPage)
}

// CreateJob handles POST /actions/clipping.
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	reward, err := httputil.FormFloat(r, "reward")
	if err != nil {
		httputil.HandleActionError(w, r, err)
		return
	}

	_, err = h.service.CreateJob(r.Context(), CreateJobInput{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Platform:    r.PostFormValue("platform"),
		Reward:      reward,
	})
	if err != nil {
		httputil.HandleActionError(w, r, err)
		return
	}
	httputil.Redirect(w, r, dashboardPath)
}

// Apply handles POST /actions/clipping/apply.
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	jobID := r.PostFormValue("jobId")
	if err := h.service.Apply(r.Context(), JobIDInput{JobID: jobID}); err != nil {
		httputil.HandleActionError(w, r, err)
		return
	}
	httputil.Redirect(w, r, dashboardPath+"/"+jobID)
}

// UpdateApplicationStatus handles POST /actions/clipping/applications/status.
func (h *Handler) UpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	err := h.service.UpdateApplicationStatus(r.Context(), ApplicationStatusInput{
		AppID:  r.PostFormValue("appId"),
		Status: domain.ApplicationStatus(r.PostFormValue("status")),
	})
	if err != nil {
		httputil.HandleActionError(w, r, err)
		return
	}

	if jobID := r.PostFormValue("jobId"); jobID != "" {
		httputil.Redirect(w, r, dashboardPath+"/"+jobID+"/manage")
		return
	}
	httputil.Redirect(w, r, dashboardPath+"/my")
}

// DeleteJob handles POST /actions/clipping/delete.
func (h *Handler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteJob(r.Context(), DeleteJobInput{ID: r.PostFormValue("id")}); err != nil {
		httputil.HandleActionError(w, r, err)
		return
	}
	httputil.Redirect(w, r, dashboardPath+"/my")
}

// ToggleActiveRequest is the body of the active toggle endpoint.
type ToggleActiveRequest struct {
	Active *bool `json:"active"`
}

// ToggleActiveAPI handles POST /api/clipping/{id}/toggle-active.
func (h *Handler) ToggleActiveAPI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if httputil.UserFromContext(ctx) == nil {
		httputil.HandleToggleError(ctx, w, domain.ErrNotAuthenticated, "")
		return
	}

	var req ToggleActiveRequest
	if err := httputil.DecodeJSON(r, &req); err != nil || req.Active == nil {
		httputil.HandleToggleError(ctx, w, domain.ErrValidation, "")
		return
	}

	job, err := h.service.SetActive(ctx, chi.URLParam(r, "id"), *req.Active)
	if err != nil {
		httputil.HandleToggleError(ctx, w, err, "Job not found")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"job":     job,
	})
}

// DashboardPageData is the data of the clipping dashboard.
type DashboardPageData struct {
	Jobs             []domain.ClippingJob `json:"jobs"`
	ShowCreatorTools bool                 `json:"show_creator_tools"`
}

// DashboardPage handles GET /dashboard/clipping. Every job is listed with its
// status; creator tools follow the role read on this request.
func (h *Handler) DashboardPage(w http.ResponseWriter, r *http.Request) {
	if httputil.UserFromContext(r.Context()) == nil {
		httputil.Redirect(w, r, httputil.SignInPath)
		return
	}

	canCreate, err := h.service.CanCreate(r.Context())
	if err != nil {
		httputil.HandleError(r.Context(), w, err, httputil.DomainErrors)
		return
	}

	data, err := h.pages.Render(r.Context(), view.Page{Path: dashboardPath}, func(ctx context.Context) (any, error) {
		return h.service.ListJobs(ctx)
	})
	if err != nil {
		httputil.HandleError(r.Context(), w, err, httputil.DomainErrors)
		return
	}
	jobs, _ := data.([]domain.ClippingJob)

	httputil.Success(w, http.StatusOK, DashboardPageData{Jobs: jobs, ShowCreatorTools: canCreate})
}

// MyPageData lists the caller's posted jobs and applications.
type MyPageData struct {
	Jobs         []domain.ClippingJob         `json:"jobs"`
	Applications []domain.ClippingApplication `json:"applications"`
}

// MyPage handles GET /dashboard/clipping/my.
func (h *Handler) MyPage(w http.ResponseWriter, r *http.Request) {
	user := httputil.UserFromContext(r.Context())
	if user == nil {
		httputil.Redirect(w, r, httputil.SignInPath)
		return
	}

	h.render(w, r, view.Page{Path: dashboardPath + "/my", Viewer: user.ID}, func(ctx context.Context) (any, error) {
		jobs, err := h.service.ListMine(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		apps, err := h.service.ListMyApplications(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		return MyPageData{Jobs: jobs, Applications: apps}, nil
	})
}

// DashboardJobPage handles GET /dashboard/clipping/{id}.
func (h *Handler) DashboardJobPage(w http.ResponseWriter, r *http.Request) {
	user := httputil.UserFromContext(r.Context())
	if user == nil {
		httputil.Redirect(w, r, httputil.SignInPath)
		return
	}
	id := chi.URLParam(r, "id")

	page := view.Page{Path: r.URL.Path, Viewer: user.ID, DependsOn: []string{dashboardPath}}
	h.render(w, r, page, func(ctx context.Context) (any, error) {
		return h.service.GetJobView(ctx, id, user.ID)
	})
}

// ManagePage handles GET /dashboard/clipping/{id}/manage. Cached data is keyed
// by viewer and role so a role change never serves a stale decision.
func (h *Handler) ManagePage(w http.ResponseWriter, r *http.Request) {
	principal, err := h.service.Creator(r.Context())
	if err != nil {
		httputil.HandleActionError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")

	page := view.Page{
		Path:      r.URL.Path,
		Viewer:    principal.ID + ":" + string(principal.Role),
		DependsOn: []string{dashboardPath},
	}
	data, err := h.pages.Render(r.Context(), page, func(ctx context.Context) (any, error) {
		return h.service.Manage(ctx, id)
	})
	if err != nil {
		httputil.HandleActionError(w, r, err)
		return
	}
	httputil.Success(w, http.StatusOK, data)
}

// BoardPage handles GET /clipping.
func (h *Handler) BoardPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, view.Page{Path: "/clipping"}, func(ctx context.Context) (any, error) {
		jobs, err := h.service.ListActive(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"jobs": jobs}, nil
	})
}

// JobPage handles GET /clipping/{id}.
func (h *Handler) JobPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	viewerID := httputil.GetUserID(r.Context())

	page := view.Page{Path: r.URL.Path, Viewer: viewerID, DependsOn: []string{"/clipping"}}
	h.render(w, r, page, func(ctx context.Context) (any, error) {
		return h.service.GetPublicJob(ctx, id, viewerID)
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
