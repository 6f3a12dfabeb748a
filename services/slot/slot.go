package slot

import (
	"context"
	"errors"
	"time"

	"mytutor/database/repository"
	"mytutor/metrics"
	"mytutor/models"
	"mytutor/utils"

	"go.uber.org/zap"
)

// CreateSlot publishes a new window for the calling provider.
func (e *DefaultSlotEngine) CreateSlot(ctx context.Context, caller models.Identity, start, end time.Time) (slot *models.Slot, err error) {
	defer func() { metrics.IncSlotOperation("create", err) }()

	if err := e.requireActiveProvider(ctx, caller); err != nil {
		return nil, err
	}
	start, end = start.UTC(), end.UTC()
	if err := e.validateWindow(start, end); err != nil {
		return nil, err
	}

	unlock := e.lockProvider(caller.UserID)
	defer unlock()

	if err := e.checkOverlap(ctx, caller.UserID, start, end, ""); err != nil {
		return nil, err
	}

	now := e.Clock.Now()
	slot = &models.Slot{
		ProviderID:     caller.UserID,
		StartTime:      start,
		EndTime:        end,
		Available:      true,
		BookingHistory: []models.Booking{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := e.Repo.Create(ctx, slot); err != nil {
		return nil, err
	}
	e.Logger.Info("Slot created",
		zap.String("slotID", slot.ID),
		zap.String("providerID", slot.ProviderID),
		zap.Time("start", start),
		zap.Time("end", end))
	return slot, nil
}

// ModifySlot moves an owned slot that has not started yet. Omitted bounds keep
// their current value.
func (e *DefaultSlotEngine) ModifySlot(ctx context.Context, caller models.Identity, slotID string, req models.ModifySlotRequest) (updated *models.Slot, err error) {
	defer func() { metrics.IncSlotOperation("modify", err) }()

	unlock := e.lockProvider(caller.UserID)
	defer unlock()

	err = repository.RetryOnConflict(ctx, func() error {
		slot, err := e.Repo.GetByID(ctx, slotID)
		if err != nil {
			return mapStoreError(err, slotID)
		}
		if slot.ProviderID != caller.UserID {
			return utils.NewAuthorizationError("slot %s does not belong to the caller", slotID)
		}
		if !slot.StartTime.After(e.Clock.Now()) {
			return utils.NewTimingError("slot %s has already started and can no longer be moved", slotID)
		}

		start, end := slot.StartTime, slot.EndTime
		if req.StartTime != nil {
			start = req.StartTime.UTC()
		}
		if req.EndTime != nil {
			end = req.EndTime.UTC()
		}
		if err := e.validateWindow(start, end); err != nil {
			return err
		}
		if err := e.checkOverlap(ctx, slot.ProviderID, start, end, slot.ID); err != nil {
			return err
		}

		slot.StartTime, slot.EndTime = start, end
		slot.UpdatedAt = e.Clock.Now()
		if err := e.Repo.Save(ctx, slot); err != nil {
			return err
		}
		updated = slot
		return nil
	})
	if err != nil {
		return nil, mapStoreError(err, slotID)
	}
	e.Logger.Info("Slot modified", zap.String("slotID", slotID), zap.Time("start", updated.StartTime), zap.Time("end", updated.EndTime))
	return updated, nil
}

// DeactivateSlot closes an owned slot for good. It reports false when the slot
// does not exist.
func (e *DefaultSlotEngine) DeactivateSlot(ctx context.Context, caller models.Identity, slotID string) (ok bool, err error) {
	defer func() { metrics.IncSlotOperation("deactivate", err) }()

	err = repository.RetryOnConflict(ctx, func() error {
		slot, err := e.Repo.GetByID(ctx, slotID)
		if err != nil {
			return err
		}
		if slot.ProviderID != caller.UserID {
			return utils.NewAuthorizationError("slot %s does not belong to the caller", slotID)
		}
		if slot.Deactivated && !slot.Available {
			return nil
		}
		slot.Deactivated = true
		slot.Available = false
		slot.UpdatedAt = e.Clock.Now()
		return e.Repo.Save(ctx, slot)
	})
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, mapStoreError(err, slotID)
	}
	e.Logger.Info("Slot deactivated", zap.String("slotID", slotID))
	return true, nil
}

func (e *DefaultSlotEngine) requireActiveProvider(ctx context.Context, caller models.Identity) error {
	if !caller.IsProvider() {
		return utils.NewAuthorizationError("only providers can manage slots")
	}
	u, err := e.Users.GetByID(ctx, caller.UserID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if u == nil || !u.IsActiveProvider() {
		return utils.NewAuthorizationError("user %s is not an active provider", caller.UserID)
	}
	return nil
}

func (e *DefaultSlotEngine) validateWindow(start, end time.Time) error {
	if !end.After(start) {
		return utils.NewValidationError("end time must be after start time")
	}
	if !start.After(e.Clock.Now()) {
		return utils.NewValidationError("start time must be in the future")
	}
	return nil
}

func (e *DefaultSlotEngine) checkOverlap(ctx context.Context, providerID string, start, end time.Time, excludeID string) error {
	clashes, err := e.Repo.FindOverlapping(ctx, providerID, start, end, excludeID)
	if err != nil {
		return err
	}
	if len(clashes) > 0 {
		return utils.NewConflictError("slot overlaps existing slot %s (%s - %s)",
			clashes[0].ID,
			clashes[0].StartTime.Format(time.RFC3339),
			clashes[0].EndTime.Format(time.RFC3339))
	}
	return nil
}
