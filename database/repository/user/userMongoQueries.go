package userRepo

import (
	"context"
	"errors"
	"fmt"

	"mytutor/database/repository"
	"mytutor/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (r *MongoUserRepo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	var user models.User
	err := r.coll.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

func (r *MongoUserRepo) findMany(ctx context.Context, filter bson.M) ([]models.User, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// GetByID retrieves a user by ID.
func (r *MongoUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

// GetAll retrieves all users.
func (r *MongoUserRepo) GetAll(ctx context.Context) ([]models.User, error) {
	return r.findMany(ctx, bson.M{})
}

func (r *MongoUserRepo) GetProviders(ctx context.Context) ([]models.User, error) {
	return r.findMany(ctx, bson.M{"role": models.RoleProvider})
}

func (r *MongoUserRepo) FindByReviewID(ctx context.Context, reviewID string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"provider.reviews.id": reviewID})
}

func (r *MongoUserRepo) FindReviewedBy(ctx context.Context, authorID string) ([]models.User, error) {
	return r.findMany(ctx, bson.M{"provider.reviews.authorId": authorID})
}
