package booking

import (
	"context"
	"time"

	timeslotRepo "mytutor/database/repository/timeslot"
	"mytutor/models"
	"mytutor/utils"

	"go.uber.org/zap"
)

// Default lead times used when the engine is built without explicit values.
const (
	DefaultBookingLeadTime = 2 * time.Hour
	DefaultCancelLeadTime  = 24 * time.Hour
)

// BookingEngine drives the reservation state machine of a slot's bookings.
type BookingEngine interface {
	Book(ctx context.Context, caller models.Identity, slotID string) (*models.Booking, error)
	ClientCancel(ctx context.Context, caller models.Identity, slotID string) (*models.Booking, error)
	ProviderCancel(ctx context.Context, caller models.Identity, slotID string) (*models.Booking, error)
	MarkCompleted(ctx context.Context, caller models.Identity, slotID string) (*models.Booking, error)
	MarkNoShow(ctx context.Context, caller models.Identity, slotID string) (*models.Booking, error)
	ListMine(ctx context.Context, caller models.Identity) ([]models.Slot, error)
	ListAll(ctx context.Context) ([]models.Slot, error)
}

// DefaultBookingEngine implements BookingEngine on top of a versioned slot store.
type DefaultBookingEngine struct {
	Repo            timeslotRepo.SlotRepository
	Clock           utils.Clock
	Logger          *zap.Logger
	BookingLeadTime time.Duration
	CancelLeadTime  time.Duration
}

func NewBookingEngine(repo timeslotRepo.SlotRepository, clock utils.Clock, bookingLead, cancelLead time.Duration) *DefaultBookingEngine {
	if bookingLead <= 0 {
		bookingLead = DefaultBookingLeadTime
	}
	if cancelLead <= 0 {
		cancelLead = DefaultCancelLeadTime
	}
	return &DefaultBookingEngine{
		Repo:            repo,
		Clock:           clock,
		Logger:          utils.GetLogger(),
		BookingLeadTime: bookingLead,
		CancelLeadTime:  cancelLead,
	}
}
