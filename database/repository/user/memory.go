package userRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"mytutor/database/repository"
	"mytutor/models"

	"github.com/google/uuid"
)

// MemoryUserRepo is an in-process UserRepository with the same version check
// as MongoUserRepo.
type MemoryUserRepo struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: make(map[string]*models.User)}
}

func (r *MemoryUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.Version = 1
	r.users[user.ID] = user.Clone()
	return nil
}

func (r *MemoryUserRepo) Save(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.ID]
	if !ok || stored.Version != user.Version {
		return repository.ErrVersionConflict
	}
	next := user.Clone()
	next.Version++
	next.UpdatedAt = time.Now().UTC()
	r.users[user.ID] = next
	user.Version = next.Version
	user.UpdatedAt = next.UpdatedAt
	return nil
}

func (r *MemoryUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u.Clone(), nil
}

func (r *MemoryUserRepo) filter(keep func(*models.User) bool) []models.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		if keep(u) {
			out = append(out, *u.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *MemoryUserRepo) GetAll(_ context.Context) ([]models.User, error) {
	return r.filter(func(*models.User) bool { return true }), nil
}

func (r *MemoryUserRepo) GetProviders(_ context.Context) ([]models.User, error) {
	return r.filter(func(u *models.User) bool { return u.Role == models.RoleProvider }), nil
}

func (r *MemoryUserRepo) FindByReviewID(_ context.Context, reviewID string) (*models.User, error) {
	found := r.filter(func(u *models.User) bool {
		return u.Provider != nil && u.Provider.FindReview(reviewID) != nil
	})
	if len(found) == 0 {
		return nil, repository.ErrNotFound
	}
	return &found[0], nil
}

func (r *MemoryUserRepo) FindReviewedBy(_ context.Context, authorID string) ([]models.User, error) {
	return r.filter(func(u *models.User) bool {
		if u.Provider == nil {
			return false
		}
		for _, rv := range u.Provider.Reviews {
			if rv.AuthorID == authorID {
				return true
			}
		}
		return false
	}), nil
}
