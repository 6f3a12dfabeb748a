package timeslotRepo

import (
	"context"
	"testing"
	"time"

	"mytutor/database/repository"
	"mytutor/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func newSlot(provider string, startHour, endHour int) *models.Slot {
	return &models.Slot{
		ProviderID: provider,
		StartTime:  base.Add(time.Duration(startHour) * time.Hour),
		EndTime:    base.Add(time.Duration(endHour) * time.Hour),
		Available:  true,
	}
}

func TestMemorySaveRejectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTimeSlotRepo()

	s := newSlot("p1", 1, 2)
	require.NoError(t, repo.Create(ctx, s))
	require.NotEmpty(t, s.ID)
	assert.EqualValues(t, 1, s.Version)

	first, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)

	first.Available = false
	require.NoError(t, repo.Save(ctx, first))
	assert.EqualValues(t, 2, first.Version)

	second.Available = true
	assert.ErrorIs(t, repo.Save(ctx, second), repository.ErrVersionConflict)

	stored, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, stored.Available)
}

func TestMemoryGetByIDReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTimeSlotRepo()
	s := newSlot("p1", 1, 2)
	require.NoError(t, repo.Create(ctx, s))

	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	got.Available = false

	again, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, again.Available)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMemoryQueries(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTimeSlotRepo()

	a := newSlot("p1", 1, 2)
	b := newSlot("p1", 3, 4)
	c := newSlot("p2", 1, 2)
	for _, s := range []*models.Slot{b, a, c} {
		require.NoError(t, repo.Create(ctx, s))
	}

	overlapping, err := repo.FindOverlapping(ctx, "p1", base.Add(90*time.Minute), base.Add(210*time.Minute), "")
	require.NoError(t, err)
	require.Len(t, overlapping, 2)
	assert.Equal(t, a.ID, overlapping[0].ID, "sorted by start time")

	overlapping, err = repo.FindOverlapping(ctx, "p1", base.Add(90*time.Minute), base.Add(210*time.Minute), a.ID)
	require.NoError(t, err)
	require.Len(t, overlapping, 1)
	assert.Equal(t, b.ID, overlapping[0].ID)

	touching, err := repo.FindOverlapping(ctx, "p1", base.Add(2*time.Hour), base.Add(3*time.Hour), "")
	require.NoError(t, err)
	assert.Empty(t, touching)

	mine, err := repo.GetByProvider(ctx, "p2")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, c.ID, mine[0].ID)

	expirable, err := repo.FindExpirable(ctx, base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Len(t, expirable, 2)
}

func TestMemoryBookingQueries(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTimeSlotRepo()

	booked := newSlot("p1", 1, 2)
	booked.Available = false
	booked.AppendBooking(models.Booking{ID: "b1", ClientID: "c1", State: models.BookingPending})
	open := newSlot("p1", 3, 4)
	require.NoError(t, repo.Create(ctx, booked))
	require.NoError(t, repo.Create(ctx, open))

	withBookings, err := repo.FindWithBookings(ctx)
	require.NoError(t, err)
	require.Len(t, withBookings, 1)
	assert.Equal(t, booked.ID, withBookings[0].ID)

	mine, err := repo.FindBookedBy(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	overdue, err := repo.FindOverdue(ctx, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, overdue, "not ended yet")

	overdue, err = repo.FindOverdue(ctx, base.Add(5*time.Hour))
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, booked.ID, overdue[0].ID)
}
