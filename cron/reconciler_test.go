package cron

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	timeslotRepo "mytutor/database/repository/timeslot"
	"mytutor/models"
	"mytutor/services/booking"
	"mytutor/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var t0 = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

var errDiskFull = errors.New("disk full")

// failingRepo refuses to save one slot.
type failingRepo struct {
	timeslotRepo.SlotRepository
	failID string
}

func (r *failingRepo) Save(ctx context.Context, slot *models.Slot) error {
	if slot.ID == r.failID {
		return errDiskFull
	}
	return r.SlotRepository.Save(ctx, slot)
}

func newReconciler(repo timeslotRepo.SlotRepository, clock utils.Clock) *Reconciler {
	r := NewReconciler(repo, clock, "")
	r.Logger = zap.NewNop()
	return r
}

func seed(t *testing.T, repo timeslotRepo.SlotRepository, start time.Time, available bool, bookings ...models.Booking) *models.Slot {
	t.Helper()
	s := &models.Slot{
		ProviderID: "prov-x",
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
		Available:  available,
	}
	for _, b := range bookings {
		s.AppendBooking(b)
	}
	require.NoError(t, repo.Create(context.Background(), s))
	return s
}

func pending(id string) models.Booking {
	return models.Booking{ID: id, ClientID: "client-" + id, State: models.BookingPending, CreatedAt: t0.Add(-72 * time.Hour), LastChangeTime: t0.Add(-72 * time.Hour)}
}

func reload(t *testing.T, repo timeslotRepo.SlotRepository, id string) *models.Slot {
	t.Helper()
	s, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return s
}

// Scenario C: a pending booking whose session ended is handed to the provider.
func TestSweepEscalatesOverdueBookings(t *testing.T) {
	repo := timeslotRepo.NewMemoryTimeSlotRepo()
	clock := utils.NewFixedClock(t0)
	s := seed(t, repo, t0.Add(-2*time.Hour), false, pending("b1"))

	report := newReconciler(repo, clock).Sweep(context.Background())
	assert.Equal(t, SweepReport{Escalated: 1}, report)

	stored := reload(t, repo, s.ID)
	assert.Equal(t, models.BookingAwaitingProviderAction, stored.CurrentBooking().State)
	assert.Equal(t, t0, stored.CurrentBooking().LastChangeTime)

	again := newReconciler(repo, clock).Sweep(context.Background())
	assert.Equal(t, SweepReport{}, again)
	assert.Equal(t, stored.Version, reload(t, repo, s.ID).Version, "second sweep writes nothing")
}

func TestSweepExpiresUnbookedSlots(t *testing.T) {
	repo := timeslotRepo.NewMemoryTimeSlotRepo()
	clock := utils.NewFixedClock(t0)
	past := seed(t, repo, t0.Add(-30*time.Minute), true)
	future := seed(t, repo, t0.Add(30*time.Minute), true)

	report := newReconciler(repo, clock).Sweep(context.Background())
	assert.Equal(t, 1, report.Expired)
	assert.False(t, reload(t, repo, past.ID).Available)
	assert.True(t, reload(t, repo, future.ID).Available)
}

func TestSweepLeavesRunningSessionsAlone(t *testing.T) {
	repo := timeslotRepo.NewMemoryTimeSlotRepo()
	clock := utils.NewFixedClock(t0)
	s := seed(t, repo, t0.Add(-30*time.Minute), false, pending("b1"))

	report := newReconciler(repo, clock).Sweep(context.Background())
	assert.Equal(t, SweepReport{}, report)
	assert.Equal(t, models.BookingPending, reload(t, repo, s.ID).CurrentBooking().State)
}

func TestSweepSkipsTerminalBookings(t *testing.T) {
	repo := timeslotRepo.NewMemoryTimeSlotRepo()
	clock := utils.NewFixedClock(t0)
	done := pending("b1")
	done.State = models.BookingCancelled
	s := seed(t, repo, t0.Add(-5*time.Hour), false, done)

	report := newReconciler(repo, clock).Sweep(context.Background())
	assert.Equal(t, SweepReport{}, report)
	assert.Equal(t, models.BookingCancelled, reload(t, repo, s.ID).CurrentBooking().State)
}

func TestSweepContinuesPastFailures(t *testing.T) {
	mem := timeslotRepo.NewMemoryTimeSlotRepo()
	clock := utils.NewFixedClock(t0)
	broken := seed(t, mem, t0.Add(-3*time.Hour), false, pending("b1"))
	healthy := seed(t, mem, t0.Add(-5*time.Hour), false, pending("b2"))
	stale := seed(t, mem, t0.Add(-time.Hour), true)

	repo := &failingRepo{SlotRepository: mem, failID: broken.ID}
	report := newReconciler(repo, clock).Sweep(context.Background())

	assert.Equal(t, SweepReport{Expired: 1, Escalated: 1, Failed: 1}, report)
	assert.Equal(t, models.BookingPending, reload(t, mem, broken.ID).CurrentBooking().State)
	assert.Equal(t, models.BookingAwaitingProviderAction, reload(t, mem, healthy.ID).CurrentBooking().State)
	assert.False(t, reload(t, mem, stale.ID).Available)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	r := NewReconciler(timeslotRepo.NewMemoryTimeSlotRepo(), utils.NewFixedClock(t0), "every now and then")
	r.Logger = zap.NewNop()
	assert.Error(t, r.Start())

	ok := newReconciler(timeslotRepo.NewMemoryTimeSlotRepo(), utils.NewFixedClock(t0))
	require.NoError(t, ok.Start())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ok.Stop(ctx)
}

// A booking racing the expiry pass either lands before expiry or loses with a
// conflict; the slot never ends up both booked and expired.
func TestBookRacingExpiryResolvesOneWay(t *testing.T) {
	ctx := context.Background()
	clock := utils.NewFixedClock(t0)
	client := models.Identity{UserID: "client-y", Role: models.RoleClient}

	booked, expired := 0, 0
	for i := 0; i < 200; i++ {
		repo := timeslotRepo.NewMemoryTimeSlotRepo()
		// Started ten minutes ago: expirable, and still bookable under a
		// negative lead time.
		s := seed(t, repo, t0.Add(-10*time.Minute), true)

		engine := booking.NewBookingEngine(repo, clock, 0, 0)
		engine.Logger = zap.NewNop()
		engine.BookingLeadTime = -time.Hour
		r := newReconciler(repo, clock)

		var (
			wg      sync.WaitGroup
			bookErr error
			report  SweepReport
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, bookErr = engine.Book(ctx, client, s.ID)
		}()
		go func() {
			defer wg.Done()
			report = r.Sweep(ctx)
		}()
		wg.Wait()

		stored := reload(t, repo, s.ID)
		require.False(t, stored.Available, "run %d", i)
		assert.Zero(t, report.Failed, "run %d", i)
		if bookErr == nil {
			booked++
			require.Equal(t, 0, report.Expired, "run %d: booked slot was also expired", i)
			require.Len(t, stored.BookingHistory, 1, "run %d", i)
			assert.Equal(t, models.BookingPending, stored.CurrentBooking().State)
		} else {
			expired++
			require.Equal(t, utils.KindConflict, utils.KindOf(bookErr), "run %d: %v", i, bookErr)
			require.Equal(t, 1, report.Expired, "run %d", i)
			assert.Empty(t, stored.BookingHistory, "run %d", i)
		}
	}
	assert.Equal(t, 200, booked+expired)
}
