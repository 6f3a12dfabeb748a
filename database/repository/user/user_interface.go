package userRepo

import (
	"context"

	"mytutor/models"
)

// UserRepository defines methods for user data access. Reviews live inside
// the provider profile, so review lookups go through here as well.
type UserRepository interface {
	// GetByID retrieves a user by its unique ID.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetAll retrieves all users.
	GetAll(ctx context.Context) ([]models.User, error)
	// GetProviders retrieves every user holding the provider role.
	GetProviders(ctx context.Context) ([]models.User, error)
	// Create inserts a new user record at version 1.
	Create(ctx context.Context, user *models.User) error
	// Save writes user back if nobody else has since, bumping its version.
	Save(ctx context.Context, user *models.User) error
	// FindByReviewID retrieves the provider whose profile holds the review.
	FindByReviewID(ctx context.Context, reviewID string) (*models.User, error)
	// FindReviewedBy retrieves the providers that authorID has reviewed.
	FindReviewedBy(ctx context.Context, authorID string) ([]models.User, error)
}
