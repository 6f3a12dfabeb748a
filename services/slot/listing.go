package slot

import (
	"context"

	"mytutor/models"
	"mytutor/utils"

	"go.uber.org/zap"
)

// ListAvailable joins every open slot with its provider's card. Slots whose
// provider cannot be resolved, or is no longer an active provider, are left out.
func (e *DefaultSlotEngine) ListAvailable(ctx context.Context) ([]models.SlotSummary, error) {
	slots, err := e.Repo.GetAvailable(ctx)
	if err != nil {
		return nil, err
	}

	now := e.Clock.Now()
	cards := make(map[string]*models.ProviderCard)
	summaries := make([]models.SlotSummary, 0, len(slots))
	for _, s := range slots {
		if !s.StartTime.After(now) {
			continue
		}
		card, seen := cards[s.ProviderID]
		if !seen {
			card, err = e.Directory.Lookup(ctx, s.ProviderID)
			if err != nil {
				e.Logger.Warn("Skipping slot with unresolvable provider",
					zap.String("slotID", s.ID),
					zap.String("providerID", s.ProviderID),
					zap.Error(err))
				card = nil
			}
			cards[s.ProviderID] = card
		}
		if card == nil {
			continue
		}
		summaries = append(summaries, models.SlotSummary{
			ID:           s.ID,
			ProviderID:   s.ProviderID,
			ProviderName: card.Name,
			HourlyRate:   card.HourlyRate,
			Rating:       card.Rating,
			Subjects:     card.Subjects,
			StartTime:    s.StartTime,
			EndTime:      s.EndTime,
		})
	}
	return summaries, nil
}

// Filter narrows ListAvailable. Every criterion is optional; set ones must all match.
func (e *DefaultSlotEngine) Filter(ctx context.Context, criteria models.SlotFilter) ([]models.SlotSummary, error) {
	if criteria.From != nil && criteria.To != nil && criteria.To.Before(*criteria.From) {
		return nil, utils.NewValidationError("filter end must not precede filter start")
	}
	all, err := e.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.SlotSummary, 0, len(all))
	for _, s := range all {
		if matches(s, criteria) {
			out = append(out, s)
		}
	}
	return out, nil
}

func matches(s models.SlotSummary, f models.SlotFilter) bool {
	if f.Subject != "" && !hasSubject(s.Subjects, f.Subject) {
		return false
	}
	if f.ProviderName != "" && !utils.ContainsFolded(s.ProviderName, f.ProviderName) {
		return false
	}
	if f.MinPrice != nil && s.HourlyRate < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && s.HourlyRate > *f.MaxPrice {
		return false
	}
	if f.MinRating != nil && s.Rating < *f.MinRating {
		return false
	}
	if f.MaxRating != nil && s.Rating > *f.MaxRating {
		return false
	}
	if f.From != nil && s.StartTime.Before(*f.From) {
		return false
	}
	if f.To != nil && s.EndTime.After(*f.To) {
		return false
	}
	return true
}

func hasSubject(subjects []models.Subject, needle string) bool {
	for _, sub := range subjects {
		if utils.ContainsFolded(sub.Name, needle) {
			return true
		}
	}
	return false
}

// ListProviderSlots returns every slot the calling provider owns, open or not.
func (e *DefaultSlotEngine) ListProviderSlots(ctx context.Context, caller models.Identity) ([]models.Slot, error) {
	if !caller.IsProvider() {
		return nil, utils.NewAuthorizationError("only providers own slots")
	}
	return e.Repo.GetByProvider(ctx, caller.UserID)
}

func (e *DefaultSlotEngine) ListAllSlots(ctx context.Context) ([]models.Slot, error) {
	return e.Repo.GetAll(ctx)
}
