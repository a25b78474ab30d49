package identity

import (
	"context"
	"net/http"

	"github.com/hustlehub/marketplace/internal/domain"
	"github.com/hustlehub/marketplace/internal/pkg/httputil"
)

// RoleLookup returns a user's role.
type RoleLookup interface {
	RoleOf(ctx context.Context, userID string) (domain.Role, error)
}

// Gate answers authorization questions about the session user on a context.
// Failures are returned as domain.ErrNotAuthenticated or domain.ErrNotAuthorized;
// callers decide whether that means a redirect or a status code.
type Gate struct {
	roles RoleLookup
}

// NewGate creates a gate using roles for role checks.
func NewGate(roles RoleLookup) *Gate {
	return &Gate{roles: roles}
}

// RequireAuthenticated returns the session user or ErrNotAuthenticated.
func (g *Gate) RequireAuthenticated(ctx context.Context) (*domain.User, error) {
	user := httputil.UserFromContext(ctx)
	if user == nil {
		return nil, domain.ErrNotAuthenticated
	}
	return user, nil
}

// RequireRoleIn returns the principal when the user's role is one of roles.
func (g *Gate) RequireRoleIn(ctx context.Context, roles ...domain.Role) (*domain.Principal, error) {
	principal, err := g.WithRole(ctx)
	if err != nil {
		return nil, err
	}
	if !principal.Role.In(roles...) {
		return nil, domain.ErrNotAuthorized
	}
	return principal, nil
}

// OptionalUser returns the session user or nil.
func (g *Gate) OptionalUser(ctx context.Context) *domain.User {
	return httputil.UserFromContext(ctx)
}

// WithRole returns the authenticated user together with their role.
func (g *Gate) WithRole(ctx context.Context) (*domain.Principal, error) {
	user, err := g.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	role, err := g.roles.RoleOf(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &domain.Principal{ID: user.ID, Email: user.Email, Role: role}, nil
}

// RequireAuthenticatedPage redirects anonymous visitors to the sign-in page
// before the wrapped page reads anything.
func (g *Gate) RequireAuthenticatedPage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := g.RequireAuthenticated(r.Context()); err != nil {
			httputil.Redirect(w, r, httputil.SignInPath)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRolePage redirects anonymous visitors to sign-in and users outside
// roles to the dashboard.
func (g *Gate) RequireRolePage(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := g.RequireRoleIn(r.Context(), roles...); err != nil {
				httputil.HandleActionError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
