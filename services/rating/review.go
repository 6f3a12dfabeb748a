package rating

import (
	"context"
	"errors"
	"sort"
	"strings"

	"mytutor/database/repository"
	"mytutor/metrics"
	"mytutor/models"
	"mytutor/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateReview rates the provider of a slot whose session the caller completed.
func (e *DefaultRatingEngine) CreateReview(ctx context.Context, caller models.Identity, slotID string, score int, comment string) (*models.Review, error) {
	if !validScore(score) {
		return nil, utils.NewValidationError("score must be between %d and %d", MinScore, MaxScore)
	}

	slot, err := e.Slots.GetByID(ctx, slotID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NewNotFoundError("slot %s not found", slotID)
	}
	if err != nil {
		return nil, err
	}
	booking := slot.LatestBookingBy(caller.UserID)
	if booking == nil {
		return nil, utils.NewNotFoundError("no booking by the caller on slot %s", slotID)
	}
	if booking.State != models.BookingCompleted {
		return nil, utils.NewStateError("booking %s is %s, only completed sessions can be reviewed", booking.ID, booking.State)
	}
	if e.Clock.Now().Before(slot.EndTime) {
		return nil, utils.NewTimingError("slot %s has not ended yet", slotID)
	}

	var created models.Review
	err = repository.RetryOnConflict(ctx, func() error {
		provider, err := e.loadProvider(ctx, slot.ProviderID)
		if err != nil {
			return err
		}
		for _, r := range provider.Provider.Reviews {
			if r.BookingID == booking.ID {
				return utils.NewConflictError("booking %s has already been reviewed", booking.ID)
			}
		}
		created = models.Review{
			ID:          uuid.New().String(),
			AuthorID:    caller.UserID,
			SlotID:      slot.ID,
			BookingID:   booking.ID,
			Score:       score,
			Comment:     strings.TrimSpace(comment),
			CreatedTime: e.Clock.Now(),
		}
		provider.Provider.Reviews = append(provider.Provider.Reviews, created)
		provider.Provider.RatingAverage = averageScore(provider.Provider.Reviews)
		return e.Users.Save(ctx, provider)
	})
	if err != nil {
		return nil, mapUserError(err, slot.ProviderID)
	}

	metrics.IncReview("create")
	e.invalidate(ctx, slot.ProviderID)
	e.Logger.Info("Review created",
		zap.String("reviewID", created.ID),
		zap.String("providerID", slot.ProviderID),
		zap.Int("score", score))
	return &created, nil
}

// EditReview changes the score and/or comment of a review the caller wrote.
func (e *DefaultRatingEngine) EditReview(ctx context.Context, caller models.Identity, reviewID string, req models.EditReviewRequest) (*models.ReviewSummary, error) {
	if req.Score != nil && !validScore(*req.Score) {
		return nil, utils.NewValidationError("score must be between %d and %d", MinScore, MaxScore)
	}

	var (
		summary      models.ReviewSummary
		scoreChanged bool
	)
	err := repository.RetryOnConflict(ctx, func() error {
		provider, err := e.Users.FindByReviewID(ctx, reviewID)
		if errors.Is(err, repository.ErrNotFound) {
			return utils.NewNotFoundError("review %s not found", reviewID)
		}
		if err != nil {
			return err
		}
		review := provider.Provider.FindReview(reviewID)
		if review.AuthorID != caller.UserID {
			return utils.NewAuthorizationError("review %s was written by another user", reviewID)
		}

		scoreChanged = req.Score != nil && *req.Score != review.Score
		if req.Score != nil {
			review.Score = *req.Score
		}
		if req.Comment != nil {
			review.Comment = strings.TrimSpace(*req.Comment)
		}
		review.UpdatedTime = e.Clock.Now()
		if scoreChanged {
			provider.Provider.RatingAverage = averageScore(provider.Provider.Reviews)
		}
		summary = models.NewReviewSummary(provider, *review)
		return e.Users.Save(ctx, provider)
	})
	if err != nil {
		return nil, mapUserError(err, reviewID)
	}

	metrics.IncReview("edit")
	if scoreChanged {
		e.invalidate(ctx, summary.ProviderID)
	}
	return &summary, nil
}

// RecomputeAverage recalculates and stores a provider's average score.
func (e *DefaultRatingEngine) RecomputeAverage(ctx context.Context, providerID string) (float64, error) {
	var avg float64
	err := repository.RetryOnConflict(ctx, func() error {
		provider, err := e.loadProvider(ctx, providerID)
		if err != nil {
			return err
		}
		avg = averageScore(provider.Provider.Reviews)
		if provider.Provider.RatingAverage == avg {
			return nil
		}
		provider.Provider.RatingAverage = avg
		return e.Users.Save(ctx, provider)
	})
	if err != nil {
		return 0, mapUserError(err, providerID)
	}
	e.invalidate(ctx, providerID)
	return avg, nil
}

// ReviewsFor lists a provider's reviews in creation order.
func (e *DefaultRatingEngine) ReviewsFor(ctx context.Context, providerID string) ([]models.Review, error) {
	provider, err := e.loadProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	return append([]models.Review{}, provider.Provider.Reviews...), nil
}

func (e *DefaultRatingEngine) ReviewByID(ctx context.Context, reviewID string) (*models.ReviewSummary, error) {
	provider, err := e.Users.FindByReviewID(ctx, reviewID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NewNotFoundError("review %s not found", reviewID)
	}
	if err != nil {
		return nil, err
	}
	summary := models.NewReviewSummary(provider, *provider.Provider.FindReview(reviewID))
	return &summary, nil
}

// ReviewsAuthoredBy lists the caller's reviews across all providers, oldest first.
func (e *DefaultRatingEngine) ReviewsAuthoredBy(ctx context.Context, caller models.Identity) ([]models.ReviewSummary, error) {
	providers, err := e.Users.FindReviewedBy(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	type dated struct {
		summary models.ReviewSummary
		created int64
	}
	var found []dated
	for i := range providers {
		p := &providers[i]
		for _, r := range p.Provider.Reviews {
			if r.AuthorID == caller.UserID {
				found = append(found, dated{models.NewReviewSummary(p, r), r.CreatedTime.UnixNano()})
			}
		}
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].created < found[j].created })

	out := make([]models.ReviewSummary, len(found))
	for i, d := range found {
		out[i] = d.summary
	}
	return out, nil
}

func (e *DefaultRatingEngine) loadProvider(ctx context.Context, providerID string) (*models.User, error) {
	u, err := e.Users.GetByID(ctx, providerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NewNotFoundError("provider %s not found", providerID)
	}
	if err != nil {
		return nil, err
	}
	if u.Provider == nil {
		return nil, utils.NewNotFoundError("user %s has no provider profile", providerID)
	}
	return u, nil
}

func (e *DefaultRatingEngine) invalidate(ctx context.Context, providerID string) {
	if err := e.Directory.Invalidate(ctx, providerID); err != nil {
		e.Logger.Warn("Failed to invalidate provider card", zap.String("providerID", providerID), zap.Error(err))
	}
}

func mapUserError(err error, id string) error {
	if errors.Is(err, repository.ErrVersionConflict) {
		metrics.IncVersionConflict("user")
		return utils.NewConflictError("%s is being modified concurrently, try again", id)
	}
	return err
}
