package slot

import (
	"errors"

	"mytutor/database/repository"
	"mytutor/metrics"
	"mytutor/utils"
)

// mapStoreError turns repository sentinels into domain errors. Anything else
// is a store failure and is returned unchanged.
func mapStoreError(err error, slotID string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return utils.NewNotFoundError("slot %s not found", slotID)
	case errors.Is(err, repository.ErrVersionConflict):
		metrics.IncVersionConflict("slot")
		return utils.NewConflictError("slot %s is being modified concurrently, try again", slotID)
	}
	return err
}
