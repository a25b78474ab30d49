// Package dashboard serves the landing pages that summarize every feature.
package dashboard

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hustlehub/marketplace/internal/domain"
	"github.com/hustlehub/marketplace/internal/pkg/httputil"
	"github.com/hustlehub/marketplace/internal/view"
	"golang.org/x/sync/errgroup"
)

// Path is the dashboard page path; feature mutations invalidate it.
const Path = "/dashboard"

// CountFunc returns the size of one feature's collection.
type CountFunc func(ctx context.Context) (int, error)

// Counters provides the collection sizes shown on the dashboard.
type Counters struct {
	Courses      CountFunc
	ThriftItems  CountFunc
	ClippingJobs CountFunc
}

// RoleLookup resolves the session user's role.
type RoleLookup interface {
	WithRole(ctx context.Context) (*domain.Principal, error)
}

// Handler handles the home and dashboard pages.
type Handler struct {
	counters Counters
	roles    RoleLookup
	pages    *view.Cache
}

// NewHandler creates a new dashboard handler.
func NewHandler(counters Counters, roles RoleLookup, pages *view.Cache) *Handler {
	return &Handler{counters: counters, roles: roles, pages: pages}
}

// RegisterPageRoutes registers the home and dashboard pages.
func (h *Handler) RegisterPageRoutes(r chi.Router) {
	r.Get("/", h.Home)
	r.Get(Path, h.Dashboard)
}

// Stats are the dashboard counters.
type Stats struct {
	Courses      int `json:"courses"`
	ThriftItems  int `json:"thrift_items"`
	ClippingJobs int `json:"clipping_jobs"`
}

// PageData is the dashboard page data.
type PageData struct {
	Email            string      `json:"email"`
	Role             domain.Role `json:"role"`
	ShowCreatorTools bool        `json:"show_creator_tools"`
	Stats            Stats       `json:"stats"`
}

// Home handles GET /.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	user := httputil.UserFromContext(r.Context())
	if user == nil {
		httputil.Redirect(w, r, httputil.SignInPath)
		return
	}
	httputil.Success(w, http.StatusOK, map[string]any{
		"user":      user,
		"dashboard": Path,
	})
}

// Dashboard handles GET /dashboard. The role is resolved on every request;
// only the global counts go through the page cache.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	principal, err := h.roles.WithRole(r.Context())
	if err != nil {
		httputil.HandleActionError(w, r, err)
		return
	}

	data, err := h.pages.Render(r.Context(), view.Page{Path: Path}, h.loadStats)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, httputil.DomainErrors)
		return
	}
	stats, _ := data.(Stats)

	httputil.Success(w, http.StatusOK, PageData{
		Email:            principal.Email,
		Role:             principal.Role,
		ShowCreatorTools: principal.Role.In(domain.RoleCreator, domain.RoleAdmin),
		Stats:            stats,
	})
}

func (h *Handler) loadStats(ctx context.Context) (any, error) {
	var stats Stats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return count(gctx, h.counters.Courses, &stats.Courses) })
	g.Go(func() error { return count(gctx, h.counters.ThriftItems, &stats.ThriftItems) })
	g.Go(func() error { return count(gctx, h.counters.ClippingJobs, &stats.ClippingJobs) })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

func count(ctx context.Context, fn CountFunc, dst *int) error {
	if fn == nil {
		return nil
	}
	n, err := fn(ctx)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}
