// Package postgres provides PostgreSQL implementation of the identity repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/hustlehub/marketplace/internal/domain"
	"github.com/hustlehub/marketplace/internal/identity"
	"github.com/hustlehub/marketplace/internal/pkg/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const usernameConstraint = "profiles_username_key"

// Repository implements the identity.Repository interface using PostgreSQL.
type Repository struct {
	db postgres.Querier
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetRole returns the raw role stored on the user's profile.
func (r *Repository) GetRole(ctx context.Context, userID string) (string, error) {
	var role string
	err := r.db.QueryRow(ctx, `SELECT role FROM profiles WHERE id = $1`, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", identity.ErrProfileNotFound
		}
		return "", fmt.Errorf("get role: %w", err)
	}
	return role, nil
}

// GetProfile retrieves a profile by user id.
func (r *Repository) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	query := `
		SELECT id, email, username, full_name, role, created_at
		FROM profiles
		WHERE id = $1
	`
	var p domain.Profile
	var email *string
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.ID,
		&email,
		&p.Username,
		&p.FullName,
		&p.Role,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if email != nil {
		p.Email = *email
	}
	return &p, nil
}

// UpsertProfile creates the profile row on first save and updates it afterwards.
// The role column is never written here.
func (r *Repository) UpsertProfile(ctx context.Context, update identity.ProfileUpdate) error {
	query := `
		INSERT INTO profiles (id, email, username, full_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET username = EXCLUDED.username,
		    full_name = EXCLUDED.full_name
	`
	_, err := r.db.Exec(ctx, query, update.UserID, update.Email, update.Username, update.FullName)
	if err != nil {
		if postgres.IsUniqueViolation(err, usernameConstraint) {
			return identity.ErrUsernameTaken
		}
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// SetUsername writes the username, creating the profile row if needed.
func (r *Repository) SetUsername(ctx context.Context, userID, email, username string) error {
	query := `
		INSERT INTO profiles (id, email, username)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET username = EXCLUDED.username
	`
	_, err := r.db.Exec(ctx, query, userID, email, username)
	if err != nil {
		if postgres.IsUniqueViolation(err, usernameConstraint) {
			return identity.ErrUsernameTaken
		}
		return fmt.Errorf("set username: %w", err)
	}
	return nil
}
