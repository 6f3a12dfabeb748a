package booking

import (
	"context"
	"time"

	"mytutor/metrics"
	"mytutor/models"
	"mytutor/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Book reserves an open slot for the caller. The slot closes immediately.
func (e *DefaultBookingEngine) Book(ctx context.Context, caller models.Identity, slotID string) (*models.Booking, error) {
	b, err := e.mutate(ctx, slotID, func(slot *models.Slot, now time.Time) (*models.Booking, bool, error) {
		if slot.Deactivated || !slot.Available {
			return nil, false, utils.NewConflictError("slot %s is not available", slotID)
		}
		if slot.ProviderID == caller.UserID {
			return nil, false, utils.NewAuthorizationError("providers cannot book their own slot")
		}
		if now.After(slot.StartTime.Add(-e.BookingLeadTime)) {
			return nil, false, utils.NewTimingError("bookings close %s before the session starts", e.BookingLeadTime)
		}
		booking := slot.AppendBooking(models.Booking{
			ID:             uuid.New().String(),
			ClientID:       caller.UserID,
			State:          models.BookingPending,
			CreatedAt:      now,
			LastChangeTime: now,
		})
		slot.Available = false
		return booking, true, nil
	})
	if err != nil {
		return nil, err
	}
	metrics.IncBookingTransition(string(models.BookingPending))
	e.Logger.Info("Slot booked",
		zap.String("slotID", slotID),
		zap.String("bookingID", b.ID),
		zap.String("clientID", caller.UserID))
	return b, nil
}

// ClientCancel withdraws the caller's live booking and reopens the slot unless
// its provider deactivated it.
func (e *DefaultBookingEngine) ClientCancel(ctx context.Context, caller models.Identity, slotID string) (*models.Booking, error) {
	b, err := e.mutate(ctx, slotID, func(slot *models.Slot, now time.Time) (*models.Booking, bool, error) {
		current := slot.CurrentBooking()
		if current == nil {
			return nil, false, utils.NewNotFoundError("slot %s has no bookings", slotID)
		}
		if current.ClientID != caller.UserID {
			return nil, false, utils.NewAuthorizationError("the current booking of slot %s belongs to another client", slotID)
		}
		if err := e.checkCancellable(slot, current, now); err != nil {
			return nil, false, err
		}
		current.Transition(models.BookingCancelled, now)
		slot.Available = !slot.Deactivated
		return current, true, nil
	})
	if err != nil {
		return nil, err
	}
	metrics.IncBookingTransition(string(models.BookingCancelled))
	e.Logger.Info("Booking cancelled by client", zap.String("slotID", slotID), zap.String("bookingID", b.ID))
	return b, nil
}

// ProviderCancel cancels the live booking of an owned slot. The slot stays closed.
func (e *DefaultBookingEngine) ProviderCancel(ctx context.Context, caller models.Identity, slotID string) (*models.Booking, error) {
	b, err := e.mutate(ctx, slotID, func(slot *models.Slot, now time.Time) (*models.Booking, bool, error) {
		if slot.ProviderID != caller.UserID {
			return nil, false, utils.NewAuthorizationError("slot %s does not belong to the caller", slotID)
		}
		current := slot.CurrentBooking()
		if current == nil {
			return nil, false, utils.NewNotFoundError("slot %s has no bookings", slotID)
		}
		if err := e.checkCancellable(slot, current, now); err != nil {
			return nil, false, err
		}
		current.Transition(models.BookingCancelled, now)
		slot.Available = false
		return current, true, nil
	})
	if err != nil {
		return nil, err
	}
	metrics.IncBookingTransition(string(models.BookingCancelled))
	e.Logger.Info("Booking cancelled by provider", zap.String("slotID", slotID), zap.String("bookingID", b.ID))
	return b, nil
}

func (e *DefaultBookingEngine) checkCancellable(slot *models.Slot, current *models.Booking, now time.Time) error {
	if current.State != models.BookingPending {
		return utils.NewStateError("booking %s is %s and can no longer be cancelled", current.ID, current.State)
	}
	if now.After(slot.StartTime.Add(-e.CancelLeadTime)) {
		return utils.NewTimingError("cancellations close %s before the session starts", e.CancelLeadTime)
	}
	return nil
}

// MarkCompleted records that the session of an owned slot took place.
func (e *DefaultBookingEngine) MarkCompleted(ctx context.Context, caller models.Identity, slotID string) (*models.Booking, error) {
	return e.settle(ctx, caller, slotID, models.BookingCompleted)
}

// MarkNoShow records that the client of an owned slot did not attend.
func (e *DefaultBookingEngine) MarkNoShow(ctx context.Context, caller models.Identity, slotID string) (*models.Booking, error) {
	return e.settle(ctx, caller, slotID, models.BookingNoShow)
}

// settle moves the current booking to outcome once the slot has ended. A
// PENDING booking the sweep has not reached yet is escalated on the way;
// repeating the same outcome is a no-op.
func (e *DefaultBookingEngine) settle(ctx context.Context, caller models.Identity, slotID string, outcome models.BookingState) (*models.Booking, error) {
	changed := false
	b, err := e.mutate(ctx, slotID, func(slot *models.Slot, now time.Time) (*models.Booking, bool, error) {
		changed = false
		if slot.ProviderID != caller.UserID {
			return nil, false, utils.NewAuthorizationError("slot %s does not belong to the caller", slotID)
		}
		if now.Before(slot.EndTime) {
			return nil, false, utils.NewTimingError("slot %s has not ended yet", slotID)
		}
		current := slot.CurrentBooking()
		if current == nil {
			return nil, false, utils.NewNotFoundError("slot %s has no bookings", slotID)
		}
		if current.State == outcome {
			return current, false, nil
		}
		if current.State == models.BookingPending {
			current.Transition(models.BookingAwaitingProviderAction, now)
		}
		if !current.Transition(outcome, now) {
			return nil, false, utils.NewStateError("booking %s is %s and cannot become %s", current.ID, current.State, outcome)
		}
		changed = true
		return current, true, nil
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return b, nil
	}
	metrics.IncBookingTransition(string(outcome))
	e.Logger.Info("Booking settled",
		zap.String("slotID", slotID),
		zap.String("bookingID", b.ID),
		zap.String("state", string(b.State)))
	return b, nil
}

// ListMine returns every slot whose history holds a booking by the caller.
func (e *DefaultBookingEngine) ListMine(ctx context.Context, caller models.Identity) ([]models.Slot, error) {
	return e.Repo.FindBookedBy(ctx, caller.UserID)
}

// ListAll returns every slot that has been booked at least once.
func (e *DefaultBookingEngine) ListAll(ctx context.Context) ([]models.Slot, error) {
	return e.Repo.FindWithBookings(ctx)
}
