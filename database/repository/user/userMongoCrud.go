// File: database/repository/user/userMongoCrud.go
package userRepo

import (
	"context"
	"fmt"
	"time"

	"mytutor/database/repository"
	"mytutor/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// Create inserts a new user document.
func (r *MongoUserRepo) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.Version = 1

	_, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Save replaces the user document guarded by its version.
func (r *MongoUserRepo) Save(ctx context.Context, user *models.User) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	expected := user.Version
	next := *user
	next.Version = expected + 1
	next.UpdatedAt = time.Now().UTC()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": user.ID, "version": expected}, next)
	if err != nil {
		return fmt.Errorf("failed to update user with id %s: %w", user.ID, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrVersionConflict
	}
	user.Version = next.Version
	user.UpdatedAt = next.UpdatedAt
	return nil
}
