package testutil

import (
	"fmt"

	"github.com/google/uuid"
)

// RandomEmail returns a unique address so tests never collide on profiles.
func RandomEmail() string {
	return fmt.Sprintf("test-%s@example.com", uuid.NewString()[:8])
}

// RandomTitle returns prefix with a unique suffix.
func RandomTitle(prefix string) string {
	return fmt.Sprintf("%s %s", prefix, uuid.NewString()[:8])
}
