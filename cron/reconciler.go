package cron

import (
	"context"
	"fmt"
	"time"

	"mytutor/database/repository"
	timeslotRepo "mytutor/database/repository/timeslot"
	"mytutor/metrics"
	"mytutor/models"
	"mytutor/utils"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultSchedule runs the sweep hourly.
const DefaultSchedule = "@every 1h"

// SweepReport counts what one sweep changed.
type SweepReport struct {
	Expired   int `json:"expired"`   // slots closed because their start passed unbooked
	Escalated int `json:"escalated"` // bookings moved to AWAITING_PROVIDER_ACTION
	Failed    int `json:"failed"`    // slots that could not be updated
}

// Reconciler closes stale slots and escalates overdue bookings on a schedule,
// concurrently with request traffic. Every write goes through the versioned
// slot save, so it never clobbers a concurrent booking.
type Reconciler struct {
	Repo     timeslotRepo.SlotRepository
	Clock    utils.Clock
	Logger   *zap.Logger
	Schedule string

	cron *cron.Cron
}

func NewReconciler(repo timeslotRepo.SlotRepository, clock utils.Clock, schedule string) *Reconciler {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &Reconciler{
		Repo:     repo,
		Clock:    clock,
		Logger:   utils.GetLogger(),
		Schedule: schedule,
	}
}

// Start registers the sweep and runs the scheduler in the background.
// Overlapping runs are skipped.
func (r *Reconciler) Start() error {
	logger := cronLogger{r.Logger.Sugar()}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc(r.Schedule, func() { r.Sweep(context.Background()) }); err != nil {
		return fmt.Errorf("invalid reconcile schedule %q: %w", r.Schedule, err)
	}
	r.cron = c
	c.Start()
	r.Logger.Info("Reconciler started", zap.String("schedule", r.Schedule))
	return nil
}

// Stop halts the scheduler and waits for a running sweep, or for ctx.
func (r *Reconciler) Stop(ctx context.Context) {
	if r.cron == nil {
		return
	}
	select {
	case <-r.cron.Stop().Done():
	case <-ctx.Done():
	}
	r.Logger.Info("Reconciler stopped")
}

// Sweep runs both passes once. A failure on one slot is logged and counted;
// the rest of the pass still runs.
func (r *Reconciler) Sweep(ctx context.Context) SweepReport {
	started := time.Now()
	now := r.Clock.Now()

	var report SweepReport
	r.expireUnreserved(ctx, now, &report)
	r.escalateOverdue(ctx, now, &report)

	metrics.AddSweep("expired", report.Expired)
	metrics.AddSweep("escalated", report.Escalated)
	metrics.AddSweep("failed", report.Failed)
	metrics.ObserveSweep(time.Since(started).Seconds())

	r.Logger.Info("Reconciliation sweep finished",
		zap.Int("expired", report.Expired),
		zap.Int("escalated", report.Escalated),
		zap.Int("failed", report.Failed),
		zap.Duration("took", time.Since(started)))
	return report
}

func (r *Reconciler) expireUnreserved(ctx context.Context, now time.Time, report *SweepReport) {
	candidates, err := r.Repo.FindExpirable(ctx, now)
	if err != nil {
		r.Logger.Error("Failed to list expirable slots", zap.Error(err))
		return
	}
	for _, c := range candidates {
		changed := false
		err := r.update(ctx, c.ID, func(slot *models.Slot) bool {
			changed = slot.Available && slot.StartTime.Before(now)
			if changed {
				slot.Available = false
				slot.UpdatedAt = now
			}
			return changed
		})
		if err != nil {
			report.Failed++
			r.Logger.Error("Failed to expire slot", zap.String("slotID", c.ID), zap.Error(err))
			continue
		}
		if changed {
			report.Expired++
		}
	}
}

func (r *Reconciler) escalateOverdue(ctx context.Context, now time.Time, report *SweepReport) {
	candidates, err := r.Repo.FindOverdue(ctx, now)
	if err != nil {
		r.Logger.Error("Failed to list overdue slots", zap.Error(err))
		return
	}
	for _, c := range candidates {
		escalated := 0
		err := r.update(ctx, c.ID, func(slot *models.Slot) bool {
			escalated = 0
			if !slot.EndTime.Before(now) {
				return false
			}
			for i := range slot.BookingHistory {
				b := &slot.BookingHistory[i]
				if b.State == models.BookingPending && b.Transition(models.BookingAwaitingProviderAction, now) {
					escalated++
				}
			}
			if escalated > 0 {
				slot.UpdatedAt = now
			}
			return escalated > 0
		})
		if err != nil {
			report.Failed++
			r.Logger.Error("Failed to escalate bookings", zap.String("slotID", c.ID), zap.Error(err))
			continue
		}
		if escalated > 0 {
			metrics.IncBookingTransition(string(models.BookingAwaitingProviderAction))
		}
		report.Escalated += escalated
	}
}

// update re-reads the slot, lets apply decide on the fresh copy and saves it
// when apply reports a change.
func (r *Reconciler) update(ctx context.Context, slotID string, apply func(*models.Slot) bool) error {
	return repository.RetryOnConflict(ctx, func() error {
		slot, err := r.Repo.GetByID(ctx, slotID)
		if err != nil {
			return err
		}
		if !apply(slot) {
			return nil
		}
		return r.Repo.Save(ctx, slot)
	})
}
