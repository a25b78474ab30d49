package clipping

import (
	"fmt"

	"github.com/hustlehub/marketplace/internal/domain"
)

// Clipping errors.
var (
	ErrJobNotFound         = fmt.Errorf("%w: clipping job not found", domain.ErrNotFound)
	ErrApplicationNotFound = fmt.Errorf("%w: application not found", domain.ErrNotFound)
	ErrAlreadyApplied      = fmt.Errorf("%w: you have already applied to this job", domain.ErrConflict)
	ErrCreatorRoleRequired = fmt.Errorf("%w: creator or admin role required", domain.ErrNotAuthorized)
)
