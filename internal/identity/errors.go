package identity

import (
	"fmt"

	"github.com/hustlehub/marketplace/internal/domain"
)

// Identity errors.
var (
	ErrProfileNotFound = fmt.Errorf("%w: profile not found", domain.ErrNotFound)
	ErrUsernameTaken   = fmt.Errorf("%w: username is already taken", domain.ErrConflict)
)
