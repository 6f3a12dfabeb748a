// FILE: database/repository/timeslot/indexes.go
package timeslotRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the slot queries rely on.
func (r *mongoTimeSlotRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Overlap checks scan a provider's windows.
		{
			Keys:    bson.D{{Key: "providerId", Value: 1}, {Key: "startTime", Value: 1}, {Key: "endTime", Value: 1}},
			Options: options.Index().SetName("provider_window_idx"),
		},
		{
			Keys:    bson.D{{Key: "available", Value: 1}, {Key: "startTime", Value: 1}},
			Options: options.Index().SetName("available_start_idx"),
		},
		{
			Keys:    bson.D{{Key: "bookingHistory.state", Value: 1}, {Key: "endTime", Value: 1}},
			Options: options.Index().SetName("booking_state_end_idx"),
		},
		{
			Keys:    bson.D{{Key: "bookingHistory.clientId", Value: 1}},
			Options: options.Index().SetName("booking_client_idx"),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create slot indexes: %w", err)
	}
	return nil
}
