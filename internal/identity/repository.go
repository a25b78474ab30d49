package identity

import (
	"context"

	"github.com/hustlehub/marketplace/internal/domain"
)

// Repository defines the interface for profile data operations.
type Repository interface {
	// GetRole returns the stored role string, or ErrProfileNotFound.
	GetRole(ctx context.Context, userID string) (string, error)
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	// UpsertProfile writes username and full name for the caller's own profile.
	UpsertProfile(ctx context.Context, update ProfileUpdate) error
	// SetUsername writes only the username of the caller's own profile.
	SetUsername(ctx context.Context, userID, email, username string) error
}

// ProfileUpdate is the set of fields a user may change on their profile.
type ProfileUpdate struct {
	UserID   string
	Email    string
	Username *string
	FullName *string
}
