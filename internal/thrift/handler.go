package thrift

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hustlehub/marketplace/internal/domain"
	"github.com/hustlehub/marketplace/internal/pkg/httputil"
	"github.com/hustlehub/marketplace/internal/view"
)

const dashboardPath = "/dashboard/thrifting"

// Handler handles HTTP requests for thrift items.
type Handler struct {
	service *Service
	pages   *view.Cache
}

// NewHandler creates a new thrift handler.
func NewHandler(service *Service, pages *view.Cache) *Handler {
	return &Handler{service: service, pages: pages}
}

// RegisterActionRoutes registers thrift form actions.
func (h *Handler) RegisterActionRoutes(r chi.Router) {
	r.Post("/actions/thrift", h.CreateItem)
	r.Post("/actions/thrift/delete", h.DeleteItem)
	r.Post("/actions/thrift/sold", h.MarkSold)
}

// RegisterAPIRoutes registers the availability toggle endpoint.
func (h *Handler) RegisterAPIRoutes(r chi.Router) {
	r.Post("/api/thrift/{id}/toggle-availability", h.ToggleAvailabilityAPI)
}

// RegisterPageRoutes registers thrift pages. All of them require a session.
func (h *Handler) RegisterPageRoutes(r chi.Router) {
	r.Get("/dashboard/thrifting", h.MarketPage)
	r.Get("/dashboard/thrifting/my", h.MyItemsPage)
	r.Get("/dashboard/thrifting/{id}", h.ItemPage)
}

// CreateItem handles POST /actions/thrift.
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	price, err := httputil.FormFloat(r, "price")
	if err != nil {
		httputil.HandleActionError(w, r, err)
		return
	}

	_, err = h.service.CreateItem(r.Context(), CreateItemInput{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Price:       price,
	})
	if err != nil {
		httputil.HandleActionError(w, r, err)
		return
	}
	httputil.Redirect(w, r, dashboardPath+"/my")
}

// DeleteItem handles POST /actions/thrift/delete.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteItem(r.Context(), ItemIDInput{ID: r.PostFormValue("id")}); err != nil {
		httputil.HandleActionError(w, r, err)
		return
	}
	httputil.Redirect(w, r, dashboardPath+"/my")
}

// MarkSold handles POST /actions/thrift/sold.
func (h *Handler) MarkSold(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MarkSold(r.Context(), ItemIDInput{ID: r.PostFormValue("id")}); err != nil {
		httputil.HandleActionError(w, r, err)
		return
	}
	httputil.Redirect(w, r, dashboardPath+"/my")
}

// ToggleAvailabilityRequest is the body of the availability toggle endpoint.
type ToggleAvailabilityRequest struct {
	Available *bool `json:"available"`
}

// ToggleAvailabilityAPI handles POST /api/thrift/{id}/toggle-availability.
func (h *Handler) ToggleAvailabilityAPI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if httputil.UserFromContext(ctx) == nil {
		httputil.HandleToggleError(ctx, w, domain.ErrNotAuthenticated, "")
		return
	}

	var req ToggleAvailabilityRequest
	if err := httputil.DecodeJSON(r, &req); err != nil || req.Available == nil {
		httputil.HandleToggleError(ctx, w, domain.ErrValidation, "")
		return
	}

	item, err := h.service.SetAvailable(ctx, chi.URLParam(r, "id"), *req.Available)
	if err != nil {
		httputil.HandleToggleError(ctx, w, err, "Item not found")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"item":    item,
	})
}

// MarketPage handles GET /dashboard/thrifting.
func (h *Handler) MarketPage(w http.ResponseWriter, r *http.Request) {
	user := httputil.UserFromContext(r.Context())
	if user == nil {
		httputil.Redirect(w, r, httputil.SignInPath)
		return
	}

	h.render(w, r, view.Page{Path: dashboardPath, Viewer: user.ID}, func(ctx context.Context) (any, error) {
		items, err := h.service.ListItems(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"items": items}, nil
	})
}

// MyItemsPage handles GET /dashboard/thrifting/my.
func (h *Handler) MyItemsPage(w http.ResponseWriter, r *http.Request) {
	user := httputil.UserFromContext(r.Context())
	if user == nil {
		httputil.Redirect(w, r, httputil.SignInPath)
		return
	}

	h.render(w, r, view.Page{Path: dashboardPath + "/my", Viewer: user.ID}, func(ctx context.Context) (any, error) {
		return h.service.ListMine(ctx, user.ID)
	})
}

// ItemPage handles GET /dashboard/thrifting/{id}.
func (h *Handler) ItemPage(w http.ResponseWriter, r *http.Request) {
	user := httputil.UserFromContext(r.Context())
	if user == nil {
		httputil.Redirect(w, r, httputil.SignInPath)
		return
	}
	id := chi.URLParam(r, "id")

	page := view.Page{Path: ItemPath(id), Viewer: user.ID, DependsOn: []string{dashboardPath}}
	h.render(w, r, page, func(ctx context.Context) (any, error) {
		return h.service.GetItem(ctx, id, user.ID)
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
