package thrift

import (
	"fmt"

	"github.com/hustlehub/marketplace/internal/domain"
)

// ErrItemNotFound is returned for missing items and for items the caller does not own.
var ErrItemNotFound = fmt.Errorf("%w: item not found", domain.ErrNotFound)
