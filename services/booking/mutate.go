package booking

import (
	"context"
	"errors"
	"time"

	"mytutor/database/repository"
	"mytutor/metrics"
	"mytutor/models"
	"mytutor/utils"
)

// change is applied to a freshly read slot. It returns the affected booking and
// whether the slot needs to be written back.
type change func(slot *models.Slot, now time.Time) (*models.Booking, bool, error)

// mutate runs a read-validate-write cycle on one slot, replaying it when a
// concurrent writer bumped the version in between.
func (e *DefaultBookingEngine) mutate(ctx context.Context, slotID string, apply change) (*models.Booking, error) {
	var result models.Booking
	err := repository.RetryOnConflict(ctx, func() error {
		slot, err := e.Repo.GetByID(ctx, slotID)
		if err != nil {
			return err
		}
		now := e.Clock.Now()
		b, dirty, err := apply(slot, now)
		if err != nil {
			return err
		}
		result = *b
		if !dirty {
			return nil
		}
		slot.UpdatedAt = now
		return e.Repo.Save(ctx, slot)
	})
	if err != nil {
		return nil, mapStoreError(err, slotID)
	}
	return &result, nil
}

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
