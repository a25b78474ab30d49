package domain

import "errors"

// Error taxonomy shared by every feature. Feature packages wrap these so that
// transport code can map any error with errors.Is.
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotAuthorized    = errors.New("not authorized")
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrUpstreamFailure  = errors.New("upstream failure")
)

// IsTaxonomy reports whether err already belongs to the shared taxonomy.
func IsTaxonomy(err error) bool {
	for _, target := range []error{
		ErrNotAuthenticated,
		ErrNotAuthorized,
		ErrValidation,
		ErrNotFound,
		ErrConflict,
		ErrUpstreamFailure,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
