package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hustlehub/marketplace/internal/action"
	"github.com/hustlehub/marketplace/internal/domain"
	"github.com/hustlehub/marketplace/internal/pkg/ctxlog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ProfilePaths are refreshed after any profile change.
var ProfilePaths = []string{"/dashboard/profile"}

// SessionRevoker ends a session at the hosted auth service.
type SessionRevoker interface {
	SignOut(ctx context.Context, accessToken string) error
}

// Service provides role lookup and profile operations.
type Service struct {
	repo    Repository
	revoker SessionRevoker
	runner  *action.Runner
	gate    *Gate
}

// NewService creates a new identity service. revoker may be nil, in which
// case logout only clears local cookies.
func NewService(repo Repository, revoker SessionRevoker, runner *action.Runner) *Service {
	s := &Service{
		repo:    repo,
		revoker: revoker,
		runner:  runner,
	}
	s.gate = NewGate(s)
	return s
}

// Gate returns the authorization gate backed by this service's role lookup.
func (s *Service) Gate() *Gate {
	return s.gate
}

// RoleOf returns the role stored on the user's profile.
// A missing profile or an unknown role string yields domain.RoleUser.
func (s *Service) RoleOf(ctx context.Context, userID string) (domain.Role, error) {
	raw, err := s.repo.GetRole(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return domain.RoleUser, nil
		}
		ctxlog.FromContext(ctx).Error("role lookup failed", "user_id", userID, "error", err)
		return "", fmt.Errorf("role lookup: %w", domain.ErrUpstreamFailure)
	}
	return domain.ParseRole(raw), nil
}

// GetProfile returns the caller's profile. Users without a profile row get
// a default one so the profile page can still render.
func (s *Service) GetProfile(ctx context.Context, user *domain.User) (*domain.Profile, error) {
	profile, err := s.repo.GetProfile(ctx, user.ID)
	if errors.Is(err, ErrProfileNotFound) {
		return &domain.Profile{ID: user.ID, Email: user.Email, Role: domain.RoleUser}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if profile.Email == "" {
		profile.Email = user.Email
	}
	profile.Role = domain.ParseRole(string(profile.Role))
	return profile, nil
}

// UpdateProfileInput is the profile form.
type UpdateProfileInput struct {
	Username string `form:"username" validate:"max=30"`
	FullName string `form:"full_name" validate:"max=100"`
}

// UpdateProfile sets username and full name on the caller's own profile.
// Empty fields are stored as NULL.
func (s *Service) UpdateProfile(ctx context.Context, input UpdateProfileInput) error {
	return s.runner.Run(ctx, action.Mutation{
		Name:       "updateProfile",
		Input:      input,
		Invalidate: ProfilePaths,
	}, func(ctx context.Context) error {
		user, err := s.gate.RequireAuthenticated(ctx)
		if err != nil {
			return err
		}

		err = s.repo.UpsertProfile(ctx, ProfileUpdate{
			UserID:   user.ID,
			Email:    user.Email,
			Username: optional(NormalizeUsername(input.Username)),
			FullName: optional(strings.TrimSpace(input.FullName)),
		})
		if err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		return nil
	})
}

// UpdateUsernameInput is the username form.
type UpdateUsernameInput struct {
	Username string `form:"username" validate:"notblank,max=30"`
}

// UpdateUsername changes the caller's username.
func (s *Service) UpdateUsername(ctx context.Context, input UpdateUsernameInput) error {
	return s.runner.Run(ctx, action.Mutation{
		Name:       "updateUsername",
		Input:      input,
		Invalidate: ProfilePaths,
	}, func(ctx context.Context) error {
		user, err := s.gate.RequireAuthenticated(ctx)
		if err != nil {
			return err
		}

		if err := s.repo.SetUsername(ctx, user.ID, user.Email, NormalizeUsername(input.Username)); err != nil {
			return fmt.Errorf("update username: %w", err)
		}
		return nil
	})
}

// Logout revokes the session at the hosted auth service. Revocation is best
// effort: failures are logged and the caller's cookies are cleared regardless.
func (s *Service) Logout(ctx context.Context, accessToken string) {
	_ = s.runner.Run(ctx, action.Mutation{Name: "logout"}, func(ctx context.Context) error {
		if s.revoker == nil || accessToken == "" {
			return nil
		}
		if err := s.revoker.SignOut(ctx, accessToken); err != nil {
			ctxlog.FromContext(ctx).Warn("session revocation failed", "error", err)
		}
		return nil
	})
}

// NormalizeUsername trims and lowercases a username so uniqueness is case-insensitive.
// Casers are stateful, so one is built per call.
func NormalizeUsername(username string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(username))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
