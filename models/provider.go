package models

import "time"

// DefaultRating is the average a provider carries before any review exists.
const DefaultRating = 5.0

// Subject is a topic a provider teaches.
type Subject struct {
	Name       string `bson:"name" json:"name"`
	Experience int    `bson:"experience" json:"experience"` // 0..10
}

// ProviderProfile is the capability object attached to a provider user.
type ProviderProfile struct {
	Active        bool      `bson:"active" json:"active"`
	Bio           string    `bson:"bio" json:"bio,omitempty"`
	HourlyRate    float64   `bson:"hourlyRate" json:"hourlyRate"`
	Experience    string    `bson:"experience" json:"experience,omitempty"`
	Subjects      []Subject `bson:"subjects" json:"subjects"`
	RatingAverage float64   `bson:"ratingAverage" json:"ratingAverage"`
	Reviews       []Review  `bson:"reviews" json:"reviews"`
}

// FindReview returns the review with the given id, or nil.
func (p *ProviderProfile) FindReview(reviewID string) *Review {
	for i := range p.Reviews {
		if p.Reviews[i].ID == reviewID {
			return &p.Reviews[i]
		}
	}
	return nil
}

// Review is a client's rating of a completed session, owned by the provider's profile.
type Review struct {
	ID          string    `bson:"id" json:"id"`
	AuthorID    string    `bson:"authorId" json:"authorId"`
	SlotID      string    `bson:"slotId" json:"slotId"`
	BookingID   string    `bson:"bookingId" json:"bookingId"`
	Score       int       `bson:"score" json:"score"`
	Comment     string    `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedTime time.Time `bson:"createdTime" json:"createdTime"`
	UpdatedTime time.Time `bson:"updatedTime,omitempty" json:"updatedTime,omitzero"`
}

// ReviewSummary is a review as shown outside its provider document.
type ReviewSummary struct {
	ID           string `json:"id"`
	ProviderID   string `json:"providerId"`
	ProviderName string `json:"providerName"`
	Score        int    `json:"score"`
	Comment      string `json:"comment,omitempty"`
}

// NewReviewSummary joins a review with the provider that owns it.
func NewReviewSummary(provider *User, r Review) ReviewSummary {
	return ReviewSummary{
		ID:           r.ID,
		ProviderID:   provider.ID,
		ProviderName: provider.FullName(),
		Score:        r.Score,
		Comment:      r.Comment,
	}
}

// CreateReviewRequest is the payload for rating a finished session.
type CreateReviewRequest struct {
	SlotID  string `json:"slotId" binding:"required"`
	Score   *int   `json:"score" binding:"required"`
	Comment string `json:"comment"`
}

// EditReviewRequest updates a review. Nil fields are left untouched.
type EditReviewRequest struct {
	Score   *int    `json:"score,omitempty"`
	Comment *string `json:"comment,omitempty"`
}

// ProviderCard is the public view of a provider used when listing slots.
type ProviderCard struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	HourlyRate float64   `json:"hourlyRate"`
	Subjects   []Subject `json:"subjects"`
	Rating     float64   `json:"rating"`
}

// NewProviderCard builds the card for u, or returns nil when u is not an active provider.
func NewProviderCard(u *User) *ProviderCard {
	if u == nil || !u.IsActiveProvider() {
		return nil
	}
	return &ProviderCard{
		ID:         u.ID,
		Name:       u.FullName(),
		HourlyRate: u.Provider.HourlyRate,
		Subjects:   append([]Subject(nil), u.Provider.Subjects...),
		Rating:     u.Provider.RatingAverage,
	}
}
