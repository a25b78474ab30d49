package identity

import (
	"net/http"
	"strings"

	"github.com/hustlehub/marketplace/internal/domain"
	"github.com/hustlehub/marketplace/internal/identity/jwt"
	"github.com/hustlehub/marketplace/internal/pkg/ctxlog"
)

// TokenVerifier validates a session token.
type TokenVerifier interface {
	Verify(token string) (*jwt.Claims, error)
}

// Resolver resolves the session user of a request from its bearer token or
// access-token cookie. It is consulted on every request and keeps no state.
type Resolver struct {
	verifier   TokenVerifier
	cookieName string
}

// NewResolver creates a session resolver reading cookieName.
func NewResolver(verifier TokenVerifier, cookieName string) *Resolver {
	return &Resolver{verifier: verifier, cookieName: cookieName}
}

// Resolve returns the session user, or nil when the request carries no
// valid session. It never fails.
func (s *Resolver) Resolve(r *http.Request) *domain.User {
	token := AccessToken(r, s.cookieName)
	if token == "" {
		return nil
	}

	claims, err := s.verifier.Verify(token)
	if err != nil {
		ctxlog.FromContext(r.Context()).Debug("session token rejected", "error", err)
		return nil
	}

	return &domain.User{ID: claims.Subject, Email: claims.Email}
}

// AccessToken extracts the raw session token: Authorization header first,
// then the access-token cookie.
func AccessToken(r *http.Request, cookieName string) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(cookieName); err == nil {
		return cookie.Value
	}
	return ""
}
