package rating

import (
	"context"
	"fmt"
	"testing"
	"time"

	timeslotRepo "mytutor/database/repository/timeslot"
	userRepo "mytutor/database/repository/user"
	"mytutor/models"
	"mytutor/services/booking"
	"mytutor/services/directory"
	"mytutor/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var t0 = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

var provider = models.Identity{UserID: "prov-x", Role: models.RoleProvider}

// recordingDirectory counts invalidations on top of the store-backed directory.
type recordingDirectory struct {
	*directory.RepoDirectory
	invalidated []string
}

func (d *recordingDirectory) Invalidate(ctx context.Context, providerID string) error {
	d.invalidated = append(d.invalidated, providerID)
	return d.RepoDirectory.Invalidate(ctx, providerID)
}

type fixture struct {
	clock  *utils.FixedClock
	users  *userRepo.MemoryUserRepo
	slots  timeslotRepo.SlotRepository
	dir    *recordingDirectory
	engine *DefaultRatingEngine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		clock: utils.NewFixedClock(t0),
		users: userRepo.NewMemoryUserRepo(),
		slots: timeslotRepo.NewMemoryTimeSlotRepo(),
	}
	f.dir = &recordingDirectory{RepoDirectory: directory.NewRepoDirectory(f.users)}
	f.engine = NewRatingEngine(f.users, f.slots, f.dir, f.clock)
	f.engine.Logger = zap.NewNop()

	require.NoError(t, f.users.Create(context.Background(), &models.User{
		ID:        provider.UserID,
		FirstName: "Ana",
		LastName:  "Muñoz",
		Role:      models.RoleProvider,
		Active:    true,
		Provider: &models.ProviderProfile{
			Active:        true,
			HourlyRate:    30,
			RatingAverage: models.DefaultRating,
		},
	}))
	return f
}

// seedSession stores a past slot of provider whose only booking, by clientID,
// is in the given state.
func (f *fixture) seedSession(t *testing.T, clientID string, state models.BookingState) *models.Slot {
	t.Helper()
	start := t0.Add(-3 * time.Hour)
	s := &models.Slot{
		ProviderID: provider.UserID,
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
	}
	s.AppendBooking(models.Booking{
		ID:             "booking-" + clientID + "-" + string(state),
		ClientID:       clientID,
		State:          state,
		CreatedAt:      start.Add(-48 * time.Hour),
		LastChangeTime: start.Add(2 * time.Hour),
	})
	require.NoError(t, f.slots.Create(context.Background(), s))
	return s
}

func client(n int) models.Identity {
	return models.Identity{UserID: fmt.Sprintf("client-%d", n), Role: models.RoleClient}
}

func (f *fixture) average(t *testing.T) float64 {
	t.Helper()
	u, err := f.users.GetByID(context.Background(), provider.UserID)
	require.NoError(t, err)
	return u.Provider.RatingAverage
}

func TestAverageScore(t *testing.T) {
	assert.Equal(t, models.DefaultRating, averageScore(nil))
	assert.InDelta(t, 4.0, averageScore([]models.Review{{Score: 3}, {Score: 4}, {Score: 5}}), 1e-9)
	assert.InDelta(t, 0.0, averageScore([]models.Review{{Score: 0}}), 1e-9)
}

// Three completed sessions rated 3, 4 and 5 average to 4.0.
func TestCreateReviewsUpdatesAverage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	assert.Equal(t, models.DefaultRating, f.average(t))

	for i, score := range []int{3, 4, 5} {
		c := client(i)
		s := f.seedSession(t, c.UserID, models.BookingCompleted)
		r, err := f.engine.CreateReview(ctx, c, s.ID, score, "  great session ")
		require.NoError(t, err)
		assert.Equal(t, score, r.Score)
		assert.Equal(t, "great session", r.Comment)
		assert.Equal(t, c.UserID, r.AuthorID)
	}

	assert.InDelta(t, 4.0, f.average(t), 1e-9)
	assert.Equal(t, []string{provider.UserID, provider.UserID, provider.UserID}, f.dir.invalidated)

	card, err := f.dir.Lookup(ctx, provider.UserID)
	require.NoError(t, err)
	require.NotNil(t, card)
	assert.InDelta(t, 4.0, card.Rating, 1e-9)
}

// Scenario D: a session completed by the provider is rated 5.
func TestReviewAfterCompletedSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bookings := booking.NewBookingEngine(f.slots, f.clock, 0, 0)
	bookings.Logger = zap.NewNop()

	s := &models.Slot{
		ProviderID: provider.UserID,
		StartTime:  t0.Add(3 * time.Hour),
		EndTime:    t0.Add(4 * time.Hour),
		Available:  true,
	}
	require.NoError(t, f.slots.Create(ctx, s))
	_, err := bookings.Book(ctx, client(1), s.ID)
	require.NoError(t, err)

	_, err = f.engine.CreateReview(ctx, client(1), s.ID, 5, "")
	assert.Equal(t, utils.KindState, utils.KindOf(err), "pending sessions cannot be rated")

	f.clock.Set(s.EndTime.Add(time.Hour))
	_, err = bookings.MarkCompleted(ctx, provider, s.ID)
	require.NoError(t, err)

	_, err = f.engine.CreateReview(ctx, client(1), s.ID, 5, "")
	require.NoError(t, err)

	reviews, err := f.engine.ReviewsFor(ctx, provider.UserID)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)

	avg, err := f.engine.RecomputeAverage(ctx, provider.UserID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, avg)
}

func TestCreateReviewRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	completed := f.seedSession(t, client(1).UserID, models.BookingCompleted)
	noShow := f.seedSession(t, client(2).UserID, models.BookingNoShow)

	tests := []struct {
		name   string
		caller models.Identity
		slotID string
		score  int
		kind   utils.ErrorKind
	}{
		{"score too high", client(1), completed.ID, 6, utils.KindValidation},
		{"score negative", client(1), completed.ID, -1, utils.KindValidation},
		{"unknown slot", client(1), "missing", 4, utils.KindNotFound},
		{"never booked", client(9), completed.ID, 4, utils.KindNotFound},
		{"not completed", client(2), noShow.ID, 4, utils.KindState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.CreateReview(ctx, tt.caller, tt.slotID, tt.score, "")
			assert.Equal(t, tt.kind, utils.KindOf(err))
		})
	}
	assert.Equal(t, models.DefaultRating, f.average(t))
}

func TestCreateReviewBoundaryScores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	low := f.seedSession(t, client(1).UserID, models.BookingCompleted)
	high := f.seedSession(t, client(2).UserID, models.BookingCompleted)

	_, err := f.engine.CreateReview(ctx, client(1), low.ID, MinScore, "")
	require.NoError(t, err)
	_, err = f.engine.CreateReview(ctx, client(2), high.ID, MaxScore, "")
	require.NoError(t, err)
	assert.InDelta(t, 2.5, f.average(t), 1e-9)
}

func TestCreateReviewOncePerBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.seedSession(t, client(1).UserID, models.BookingCompleted)

	_, err := f.engine.CreateReview(ctx, client(1), s.ID, 4, "")
	require.NoError(t, err)
	_, err = f.engine.CreateReview(ctx, client(1), s.ID, 2, "")
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))

	reviews, err := f.engine.ReviewsFor(ctx, provider.UserID)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
	assert.InDelta(t, 4.0, f.average(t), 1e-9)
}

func TestEditReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seedSession(t, client(1).UserID, models.BookingCompleted)
	b := f.seedSession(t, client(2).UserID, models.BookingCompleted)
	r, err := f.engine.CreateReview(ctx, client(1), a.ID, 2, "meh")
	require.NoError(t, err)
	_, err = f.engine.CreateReview(ctx, client(2), b.ID, 4, "")
	require.NoError(t, err)
	assert.InDelta(t, 3.0, f.average(t), 1e-9)
	f.dir.invalidated = nil

	comment := "better on reflection"
	f.clock.Advance(time.Hour)
	summary, err := f.engine.EditReview(ctx, client(1), r.ID, models.EditReviewRequest{Comment: &comment})
	require.NoError(t, err)
	assert.Equal(t, comment, summary.Comment)
	assert.Equal(t, "Ana Muñoz", summary.ProviderName)
	assert.Empty(t, f.dir.invalidated, "comment edits keep the average")

	score := 5
	summary, err = f.engine.EditReview(ctx, client(1), r.ID, models.EditReviewRequest{Score: &score})
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Score)
	assert.InDelta(t, 4.5, f.average(t), 1e-9)
	assert.Equal(t, []string{provider.UserID}, f.dir.invalidated)

	stored, err := f.engine.ReviewByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, comment, stored.Comment)
	assert.Equal(t, 5, stored.Score)
}

func TestEditReviewRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.seedSession(t, client(1).UserID, models.BookingCompleted)
	r, err := f.engine.CreateReview(ctx, client(1), s.ID, 3, "")
	require.NoError(t, err)

	bad := 9
	_, err = f.engine.EditReview(ctx, client(1), r.ID, models.EditReviewRequest{Score: &bad})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	score := 1
	_, err = f.engine.EditReview(ctx, client(2), r.ID, models.EditReviewRequest{Score: &score})
	assert.Equal(t, utils.KindAuthorization, utils.KindOf(err))

	_, err = f.engine.EditReview(ctx, client(1), "missing", models.EditReviewRequest{Score: &score})
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	assert.InDelta(t, 3.0, f.average(t), 1e-9)
}

func TestRecomputeAverageRepairsDrift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.seedSession(t, client(1).UserID, models.BookingCompleted)
	_, err := f.engine.CreateReview(ctx, client(1), s.ID, 2, "")
	require.NoError(t, err)

	u, err := f.users.GetByID(ctx, provider.UserID)
	require.NoError(t, err)
	u.Provider.RatingAverage = 1.25
	require.NoError(t, f.users.Save(ctx, u))

	avg, err := f.engine.RecomputeAverage(ctx, provider.UserID)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, avg, 1e-9)
	assert.InDelta(t, 2.0, f.average(t), 1e-9)

	_, err = f.engine.RecomputeAverage(ctx, "nobody")
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}

func TestReviewsAuthoredBy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	me := client(1)

	require.NoError(t, f.users.Create(ctx, &models.User{
		ID:       "prov-y",
		Role:     models.RoleProvider,
		Provider: &models.ProviderProfile{Active: true, RatingAverage: models.DefaultRating},
	}))
	other := &models.Slot{ProviderID: "prov-y", StartTime: t0.Add(-2 * time.Hour), EndTime: t0.Add(-time.Hour)}
	other.AppendBooking(models.Booking{ID: "b-other", ClientID: me.UserID, State: models.BookingCompleted})
	require.NoError(t, f.slots.Create(ctx, other))

	first := f.seedSession(t, me.UserID, models.BookingCompleted)
	_, err := f.engine.CreateReview(ctx, me, first.ID, 5, "first")
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = f.engine.CreateReview(ctx, me, other.ID, 1, "second")
	require.NoError(t, err)

	mine, err := f.engine.ReviewsAuthoredBy(ctx, me)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "first", mine[0].Comment)
	assert.Equal(t, "second", mine[1].Comment)
	assert.Equal(t, "prov-y", mine[1].ProviderID)

	none, err := f.engine.ReviewsAuthoredBy(ctx, client(7))
	require.NoError(t, err)
	assert.Empty(t, none)
}
