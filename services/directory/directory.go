package directory

import (
	"context"
	"errors"
	"fmt"

	"mytutor/database/repository"
	userRepo "mytutor/database/repository/user"
	"mytutor/models"
)

// ProviderDirectory resolves a provider id to its public card. Lookup returns
// (nil, nil) when the id is unknown or the user is not an active provider.
type ProviderDirectory interface {
	Lookup(ctx context.Context, providerID string) (*models.ProviderCard, error)
	Invalidate(ctx context.Context, providerID string) error
}

// RepoDirectory reads provider cards straight from the user store.
type RepoDirectory struct {
	Users userRepo.UserRepository
}

func NewRepoDirectory(users userRepo.UserRepository) *RepoDirectory {
	return &RepoDirectory{Users: users}
}

func (d *RepoDirectory) Lookup(ctx context.Context, providerID string) (*models.ProviderCard, error) {
	u, err := d.Users.GetByID(ctx, providerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("directory lookup %s: %w", providerID, err)
	}
	return models.NewProviderCard(u), nil
}

// Invalidate is a no-op: every lookup already hits the store.
func (d *RepoDirectory) Invalidate(context.Context, string) error { return nil }
