// File: database/repository/timeslot/interface.go
package timeslotRepo

import (
	"context"
	"time"

	"mytutor/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// SlotRepository persists slots together with their embedded booking history.
// Save is a compare-and-set on Version.
type SlotRepository interface {
	// Create inserts a new slot at version 1.
	Create(ctx context.Context, slot *models.Slot) error
	// GetByID returns repository.ErrNotFound when no slot has the id.
	GetByID(ctx context.Context, id string) (*models.Slot, error)
	// Save persists slot if the stored version still equals slot.Version and
	// bumps it on success. A stale write yields repository.ErrVersionConflict.
	Save(ctx context.Context, slot *models.Slot) error

	GetAll(ctx context.Context) ([]models.Slot, error)
	GetAvailable(ctx context.Context) ([]models.Slot, error)
	GetByProvider(ctx context.Context, providerID string) ([]models.Slot, error)
	// FindOverlapping returns the provider's slots intersecting [start, end),
	// skipping excludeID when it is non-empty.
	FindOverlapping(ctx context.Context, providerID string, start, end time.Time, excludeID string) ([]models.Slot, error)
	// FindExpirable returns available slots whose start is before now.
	FindExpirable(ctx context.Context, now time.Time) ([]models.Slot, error)
	// FindOverdue returns ended slots still carrying a PENDING booking.
	FindOverdue(ctx context.Context, now time.Time) ([]models.Slot, error)
	FindWithBookings(ctx context.Context) ([]models.Slot, error)
	FindBookedBy(ctx context.Context, clientID string) ([]models.Slot, error)
}

type mongoTimeSlotRepo struct {
	coll *mongo.Collection
}

// NewMongoTimeSlotRepo constructs a MongoDB-backed SlotRepository.
func NewMongoTimeSlotRepo(db *mongo.Database) SlotRepository {
	return &mongoTimeSlotRepo{
		coll: db.Collection("slots"),
	}
}
