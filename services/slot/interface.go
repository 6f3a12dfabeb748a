package slot

import (
	"context"
	"sync"
	"time"

	timeslotRepo "mytutor/database/repository/timeslot"
	userRepo "mytutor/database/repository/user"
	"mytutor/models"
	"mytutor/services/directory"
	"mytutor/utils"

	"go.uber.org/zap"
)

// SlotEngine manages a provider's published time windows.
type SlotEngine interface {
	CreateSlot(ctx context.Context, caller models.Identity, start, end time.Time) (*models.Slot, error)
	ModifySlot(ctx context.Context, caller models.Identity, slotID string, req models.ModifySlotRequest) (*models.Slot, error)
	DeactivateSlot(ctx context.Context, caller models.Identity, slotID string) (bool, error)
	ListAvailable(ctx context.Context) ([]models.SlotSummary, error)
	Filter(ctx context.Context, criteria models.SlotFilter) ([]models.SlotSummary, error)
	ListProviderSlots(ctx context.Context, caller models.Identity) ([]models.Slot, error)
	ListAllSlots(ctx context.Context) ([]models.Slot, error)
}

// DefaultSlotEngine implements SlotEngine.
type DefaultSlotEngine struct {
	Repo timeslotRepo.SlotRepository

	// Users is the authority on who may publish slots. Directory may be a
	// cache and only feeds the listings.
	Users userRepo.UserRepository

	Directory directory.ProviderDirectory
	Clock     utils.Clock
	Logger    *zap.Logger

	// providerLocks serializes the overlap check and the write for one
	// provider within this process.
	providerLocks sync.Map
}

func NewSlotEngine(repo timeslotRepo.SlotRepository, users userRepo.UserRepository, dir directory.ProviderDirectory, clock utils.Clock) *DefaultSlotEngine {
	return &DefaultSlotEngine{
		Repo:      repo,
		Users:     users,
		Directory: dir,
		Clock:     clock,
		Logger:    utils.GetLogger(),
	}
}

func (e *DefaultSlotEngine) lockProvider(providerID string) func() {
	v, _ := e.providerLocks.LoadOrStore(providerID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
