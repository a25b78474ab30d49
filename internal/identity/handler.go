package identity

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hustlehub/marketplace/internal/domain"
	"github.com/hustlehub/marketplace/internal/pkg/httputil"
	"github.com/hustlehub/marketplace/internal/view"
)

// CookieSettings contains settings for the session cookies set by the hosted auth service.
type CookieSettings struct {
	AccessCookie  string
	RefreshCookie string
	Secure        bool
	Domain        string
}

// Handler handles HTTP requests for the identity module.
type Handler struct {
	service        *Service
	pages          *view.Cache
	cookieSettings CookieSettings
	storeURL       string
}

// NewHandler creates a new identity handler.
func NewHandler(service *Service, pages *view.Cache, cookieSettings CookieSettings, storeURL string) *Handler {
	return &Handler{
		service:        service,
		pages:          pages,
		cookieSettings: cookieSettings,
		storeURL:       storeURL,
	}
}

// RegisterActionRoutes registers the profile and logout form actions.
func (h *Handler) RegisterActionRoutes(r chi.Router) {
	r.Post("/actions/profile", h.UpdateProfile)
	r.Post("/actions/profile/username", h.UpdateUsername)
	r.Post("/actions/logout", h.Logout)
}

// RegisterPublicPageRoutes registers pages that need no session.
func (h *Handler) RegisterPublicPageRoutes(r chi.Router) {
	r.Get("/auth/sign-in", h.SignInPage)
}

// RegisterPageRoutes registers pages that require a session.
func (h *Handler) RegisterPageRoutes(r chi.Router) {
	r.Get("/dashboard/profile", h.ProfilePage)
}

// UpdateProfile handles POST /actions/profile.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	err := h.service.UpdateProfile(r.Context(), UpdateProfileInput{
		Username: r.PostFormValue("username"),
		FullName: r.PostFormValue("full_name"),
	})
	if err != nil {
		httputil.HandleActionError(w, r, err)
		return
	}
	httputil.Redirect(w, r, "/dashboard/profile")
}

// UpdateUsername handles POST /actions/profile/username.
func (h *Handler) UpdateUsername(w http.ResponseWriter, r *http.Request) {
	err := h.service.UpdateUsername(r.Context(), UpdateUsernameInput{
		Username: r.PostFormValue("username"),
	})
	if err != nil {
		httputil.HandleActionError(w, r, err)
		return
	}
	httputil.Redirect(w, r, "/dashboard/profile")
}

// Logout handles POST /actions/logout.
// The session is revoked upstream when possible; cookies are always cleared
// and the caller always lands on the home page.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.service.Logout(r.Context(), AccessToken(r, h.cookieSettings.AccessCookie))
	h.clearAuthCookies(w)
	httputil.Redirect(w, r, httputil.HomePath)
}

// ProfilePage handles GET /dashboard/profile.
func (h *Handler) ProfilePage(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Gate().RequireAuthenticated(r.Context())
	if err != nil {
		httputil.HandleActionError(w, r, err)
		return
	}

	data, err := h.pages.Render(r.Context(), view.Page{Path: "/dashboard/profile", Viewer: user.ID},
		func(ctx context.Context) (any, error) {
			return h.service.GetProfile(ctx, user)
		})
	if err != nil {
		httputil.HandleError(r.Context(), w, err, httputil.DomainErrors)
		return
	}

	// Roles change outside this service, so the cached role is never trusted.
	role, err := h.service.RoleOf(r.Context(), user.ID)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, httputil.DomainErrors)
		return
	}
	profile := *data.(*domain.Profile)
	profile.Role = role

	httputil.Success(w, http.StatusOK, profile)
}

// SignInPage handles GET /auth/sign-in. Sign-in itself happens at the hosted
// auth service; the page only tells the client where.
func (h *Handler) SignInPage(w http.ResponseWriter, r *http.Request) {
	httputil.Success(w, http.StatusOK, map[string]any{
		"auth_url":      h.storeURL,
		"authenticated": h.service.Gate().OptionalUser(r.Context()) != nil,
	})
}

// clearAuthCookies removes the session cookies by setting Max-Age=-1.
func (h *Handler) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{h.cookieSettings.AccessCookie, h.cookieSettings.RefreshCookie} {
		if name == "" {
			continue
		}
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   h.cookieSettings.Domain,
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.cookieSettings.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
