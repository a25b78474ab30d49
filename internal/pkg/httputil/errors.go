package httputil

import (
	"context"
	"errors"
	"net/http"

	"github.com/hustlehub/marketplace/internal/domain"
	"github.com/hustlehub/marketplace/internal/pkg/ctxlog"
)

// ErrorMapping defines how a domain error maps to an HTTP response.
type ErrorMapping struct {
	Error   error
	Status  int
	Message string // if empty, uses err.Error()
}

// DomainErrors maps the shared error taxonomy to HTTP statuses.
var DomainErrors = []ErrorMapping{
	{Error: domain.ErrNotAuthenticated, Status: http.StatusUnauthorized},
	{Error: domain.ErrNotAuthorized, Status: http.StatusForbidden},
	{Error: domain.ErrNotFound, Status: http.StatusNotFound},
	{Error: domain.ErrConflict, Status: http.StatusConflict},
	{Error: domain.ErrUpstreamFailure, Status: http.StatusBadGateway, Message: "upstream failure"},
}

// HandleError maps a domain error to an HTTP response using provided mappings.
// Validation errors always produce a 400 with field details.
// If no mapping matches, logs the error and returns 500 Internal Server Error.
func HandleError(ctx context.Context, w http.ResponseWriter, err error, mappings []ErrorMapping) {
	if errors.Is(err, domain.ErrValidation) {
		ValidationError(w, err)
		return
	}
	for _, m := range mappings {
		if errors.Is(err, m.Error) {
			msg := m.Message
			if msg == "" {
				msg = err.Error()
			}
			Error(w, m.Status, msg)
			return
		}
	}
	ctxlog.FromContext(ctx).Error("internal error", "error", err)
	Error(w, http.StatusInternalServerError, "internal error")
}

// HandleActionError responds to a failed form action. Gate failures become
// redirects (sign-in for anonymous callers, dashboard for insufficient roles);
// everything else is rendered as a JSON error for the page's error boundary.
func HandleActionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		Redirect(w, r, SignInPath)
	case errors.Is(err, domain.ErrNotAuthorized):
		Redirect(w, r, DashboardPath)
	default:
		HandleError(r.Context(), w, err, DomainErrors)
	}
}

// HandleToggleError responds to a failed status toggle with the flat {"error": ...} body.
// Zero matched rows and foreign rows both surface as 404.
func HandleToggleError(ctx context.Context, w http.ResponseWriter, err error, notFoundMessage string) {
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		FlatError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, domain.ErrValidation):
		FlatError(w, http.StatusBadRequest, "Invalid request body")
	case errors.Is(err, domain.ErrNotFound):
		FlatError(w, http.StatusNotFound, notFoundMessage)
	default:
		ctxlog.FromContext(ctx).Error("toggle failed", "error", err)
		FlatError(w, http.StatusInternalServerError, "Internal server error")
	}
}
