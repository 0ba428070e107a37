package repository

import (
	"fmt"

	"github.com/AkshayAD/Cook-Commander/internal/mealplan"
)

// RemoteFailure wraps a remote store error so callers can both match
// the taxonomy sentinel with errors.Is and still see the driver cause.
func RemoteFailure(op string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", op, mealplan.ErrStorageUnavailable, err)
}
