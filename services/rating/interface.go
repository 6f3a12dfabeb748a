package rating

import (
	"context"

	timeslotRepo "mytutor/database/repository/timeslot"
	userRepo "mytutor/database/repository/user"
	"mytutor/models"
	"mytutor/services/directory"
	"mytutor/utils"

	"go.uber.org/zap"
)

// Score bounds, inclusive.
const (
	MinScore = 0
	MaxScore = 5
)

// RatingEngine owns provider reviews and the average derived from them.
type RatingEngine interface {
	CreateReview(ctx context.Context, caller models.Identity, slotID string, score int, comment string) (*models.Review, error)
	EditReview(ctx context.Context, caller models.Identity, reviewID string, req models.EditReviewRequest) (*models.ReviewSummary, error)
	RecomputeAverage(ctx context.Context, providerID string) (float64, error)
	ReviewsFor(ctx context.Context, providerID string) ([]models.Review, error)
	ReviewByID(ctx context.Context, reviewID string) (*models.ReviewSummary, error)
	ReviewsAuthoredBy(ctx context.Context, caller models.Identity) ([]models.ReviewSummary, error)
}

// DefaultRatingEngine implements RatingEngine.
type DefaultRatingEngine struct {
	Users     userRepo.UserRepository
	Slots     timeslotRepo.SlotRepository
	Directory directory.ProviderDirectory
	Clock     utils.Clock
	Logger    *zap.Logger
}

func NewRatingEngine(users userRepo.UserRepository, slots timeslotRepo.SlotRepository, dir directory.ProviderDirectory, clock utils.Clock) *DefaultRatingEngine {
	return &DefaultRatingEngine{
		Users:     users,
		Slots:     slots,
		Directory: dir,
		Clock:     clock,
		Logger:    utils.GetLogger(),
	}
}
