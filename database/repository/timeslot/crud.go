// File: database/repository/timeslot/crud.go
package timeslotRepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"mytutor/database/repository"
	"mytutor/models"
)

func (r *mongoTimeSlotRepo) Create(ctx context.Context, slot *models.Slot) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	if slot.ID == "" {
		slot.ID = uuid.New().String()
	}
	slot.Version = 1
	if _, err := r.coll.InsertOne(ctx, slot); err != nil {
		return fmt.Errorf("failed to insert slot: %w", err)
	}
	return nil
}

func (r *mongoTimeSlotRepo) GetByID(ctx context.Context, id string) (*models.Slot, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	var slot models.Slot
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&slot)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slot %s: %w", id, err)
	}
	return &slot, nil
}

// Save replaces the document only if its version is unchanged since the read.
func (r *mongoTimeSlotRepo) Save(ctx context.Context, slot *models.Slot) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	expected := slot.Version
	next := *slot
	next.Version = expected + 1

	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": slot.ID, "version": expected}, next)
	if err != nil {
		return fmt.Errorf("failed to save slot %s: %w", slot.ID, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrVersionConflict
	}
	slot.Version = next.Version
	return nil
}
