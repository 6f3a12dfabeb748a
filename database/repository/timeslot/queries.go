// File: database/repository/timeslot/queries.go
package timeslotRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mytutor/database/repository"
	"mytutor/models"
)

func (r *mongoTimeSlotRepo) find(ctx context.Context, filter bson.M) ([]models.Slot, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}, {Key: "id", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []models.Slot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode slots: %w", err)
	}
	return slots, nil
}

func (r *mongoTimeSlotRepo) GetAll(ctx context.Context) ([]models.Slot, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoTimeSlotRepo) GetAvailable(ctx context.Context) ([]models.Slot, error) {
	return r.find(ctx, bson.M{"available": true})
}

func (r *mongoTimeSlotRepo) GetByProvider(ctx context.Context, providerID string) ([]models.Slot, error) {
	return r.find(ctx, bson.M{"providerId": providerID})
}

func (r *mongoTimeSlotRepo) FindOverlapping(ctx context.Context, providerID string, start, end time.Time, excludeID string) ([]models.Slot, error) {
	filter := bson.M{
		"providerId": providerID,
		"startTime":  bson.M{"$lt": end},
		"endTime":    bson.M{"$gt": start},
	}
	if excludeID != "" {
		filter["id"] = bson.M{"$ne": excludeID}
	}
	return r.find(ctx, filter)
}

func (r *mongoTimeSlotRepo) FindExpirable(ctx context.Context, now time.Time) ([]models.Slot, error) {
	return r.find(ctx, bson.M{
		"available": true,
		"startTime": bson.M{"$lt": now},
	})
}

func (r *mongoTimeSlotRepo) FindOverdue(ctx context.Context, now time.Time) ([]models.Slot, error) {
	return r.find(ctx, bson.M{
		"endTime":              bson.M{"$lt": now},
		"bookingHistory.state": models.BookingPending,
	})
}

func (r *mongoTimeSlotRepo) FindWithBookings(ctx context.Context) ([]models.Slot, error) {
	return r.find(ctx, bson.M{"bookingHistory.0": bson.M{"$exists": true}})
}

func (r *mongoTimeSlotRepo) FindBookedBy(ctx context.Context, clientID string) ([]models.Slot, error) {
	return r.find(ctx, bson.M{"bookingHistory.clientId": clientID})
}
