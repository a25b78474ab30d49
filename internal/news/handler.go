package news

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hustlehub/marketplace/internal/pkg/httputil"
)

// Handler handles HTTP requests for headlines.
type Handler struct {
	service *Service
	apiTTL  time.Duration
	pageTTL time.Duration
}

// NewHandler creates a news handler. apiTTL bounds the age of payloads served
// by the API route, pageTTL the age of the news page.
func NewHandler(service *Service, apiTTL, pageTTL time.Duration) *Handler {
	return &Handler{service: service, apiTTL: apiTTL, pageTTL: pageTTL}
}

// RegisterAPIRoutes registers the headlines proxy.
func (h *Handler) RegisterAPIRoutes(r chi.Router) {
	r.Get("/api/news", h.Proxy)
}

// RegisterPageRoutes registers the news page.
func (h *Handler) RegisterPageRoutes(r chi.Router) {
	r.Get("/news", h.Page)
}

// Proxy handles GET /api/news.
func (h *Handler) Proxy(w http.ResponseWriter, r *http.Request) {
	category := ParseCategory(r.URL.Query().Get("category"))

	payload, err := h.service.Headlines(r.Context(), category, h.apiTTL)
	if err != nil {
		httputil.FlatError(w, http.StatusInternalServerError, "Failed to fetch news")
		return
	}

	httputil.JSON(w, http.StatusOK, payload)
}

// CategoryOption is a feed selector shown on the news page.
type CategoryOption struct {
	Key   Category `json:"key"`
	Title string   `json:"title"`
}

// Page handles GET /news with the global feed preloaded.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload, err := h.service.Headlines(ctx, CategoryGlobal, h.pageTTL)
	if err != nil {
		httputil.HandleError(ctx, w, err, httputil.DomainErrors)
		return
	}
	articles, err := Articles(payload)
	if err != nil {
		httputil.HandleError(ctx, w, err, httputil.DomainErrors)
		return
	}

	options := make([]CategoryOption, 0, len(Categories))
	for _, c := range Categories {
		options = append(options, CategoryOption{Key: c, Title: c.Title()})
	}

	httputil.Success(w, http.StatusOK, map[string]any{
		"articles":   articles,
		"categories": options,
	})
}
