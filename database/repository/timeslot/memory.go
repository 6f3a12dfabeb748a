package timeslotRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"mytutor/database/repository"
	"mytutor/models"
)

// memoryTimeSlotRepo keeps slots in process. It applies the same version check
// as the Mongo implementation, under one lock.
type memoryTimeSlotRepo struct {
	mu    sync.RWMutex
	slots map[string]*models.Slot
}

// NewMemoryTimeSlotRepo returns an empty in-process SlotRepository.
func NewMemoryTimeSlotRepo() SlotRepository {
	return &memoryTimeSlotRepo{slots: make(map[string]*models.Slot)}
}

func (r *memoryTimeSlotRepo) Create(_ context.Context, slot *models.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if slot.ID == "" {
		slot.ID = uuid.New().String()
	}
	slot.Version = 1
	r.slots[slot.ID] = slot.Clone()
	return nil
}

func (r *memoryTimeSlotRepo) GetByID(_ context.Context, id string) (*models.Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.slots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.Clone(), nil
}

func (r *memoryTimeSlotRepo) Save(_ context.Context, slot *models.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.slots[slot.ID]
	if !ok || stored.Version != slot.Version {
		return repository.ErrVersionConflict
	}
	next := slot.Clone()
	next.Version++
	r.slots[slot.ID] = next
	slot.Version = next.Version
	return nil
}

func (r *memoryTimeSlotRepo) filter(keep func(*models.Slot) bool) []models.Slot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Slot, 0, len(r.slots))
	for _, s := range r.slots {
		if keep(s) {
			out = append(out, *s.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *memoryTimeSlotRepo) GetAll(_ context.Context) ([]models.Slot, error) {
	return r.filter(func(*models.Slot) bool { return true }), nil
}

func (r *memoryTimeSlotRepo) GetAvailable(_ context.Context) ([]models.Slot, error) {
	return r.filter(func(s *models.Slot) bool { return s.Available }), nil
}

func (r *memoryTimeSlotRepo) GetByProvider(_ context.Context, providerID string) ([]models.Slot, error) {
	return r.filter(func(s *models.Slot) bool { return s.ProviderID == providerID }), nil
}

func (r *memoryTimeSlotRepo) FindOverlapping(_ context.Context, providerID string, start, end time.Time, excludeID string) ([]models.Slot, error) {
	return r.filter(func(s *models.Slot) bool {
		return s.ProviderID == providerID && s.ID != excludeID && s.Overlaps(start, end)
	}), nil
}

func (r *memoryTimeSlotRepo) FindExpirable(_ context.Context, now time.Time) ([]models.Slot, error) {
	return r.filter(func(s *models.Slot) bool {
		return s.Available && s.StartTime.Before(now)
	}), nil
}

func (r *memoryTimeSlotRepo) FindOverdue(_ context.Context, now time.Time) ([]models.Slot, error) {
	return r.filter(func(s *models.Slot) bool {
		if !s.EndTime.Before(now) {
			return false
		}
		for _, b := range s.BookingHistory {
			if b.State == models.BookingPending {
				return true
			}
		}
		return false
	}), nil
}

func (r *memoryTimeSlotRepo) FindWithBookings(_ context.Context) ([]models.Slot, error) {
	return r.filter(func(s *models.Slot) bool { return len(s.BookingHistory) > 0 }), nil
}

func (r *memoryTimeSlotRepo) FindBookedBy(_ context.Context, clientID string) ([]models.Slot, error) {
	return r.filter(func(s *models.Slot) bool { return s.HasBookingBy(clientID) }), nil
}
