package courses

import (
	"fmt"

	"github.com/hustlehub/marketplace/internal/domain"
)

// Course errors.
var (
	ErrCourseNotFound  = fmt.Errorf("%w: course not found", domain.ErrNotFound)
	ErrAlreadyEnrolled = fmt.Errorf("%w: you are already enrolled in this course", domain.ErrConflict)
)
