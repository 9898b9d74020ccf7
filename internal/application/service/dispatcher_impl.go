package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"pingme/internal/domain/constant"
	"pingme/internal/domain/entity"
	"pingme/internal/domain/lifecycle"
	"pingme/internal/domain/repository"
	"pingme/internal/infrastructure/scheduler"
	"pingme/internal/pkg/clock"
	apperrors "pingme/internal/pkg/errors"
	"pingme/internal/pkg/logger"
)

type dispatcher struct {
	reminderRepo repository.ReminderRepository
	notifier     Notifier
	sched        *scheduler.Scheduler
	clk          clock.Clock
	log          logger.Logger

	mu       sync.Mutex
	inFlight map[uint]struct{}

	scanID  cron.EntryID
	purgeID cron.EntryID
	started bool
}

// NewDispatcher creates a new instance of Dispatcher implementation.
func NewDispatcher(
	reminderRepo repository.ReminderRepository,
	notifier Notifier,
	sched *scheduler.Scheduler,
	clk clock.Clock,
	log logger.Logger,
) Dispatcher {
	return &dispatcher{
		reminderRepo: reminderRepo,
		notifier:     notifier,
		sched:        sched,
		clk:          clk,
		log:          log,
		inFlight:     make(map[uint]struct{}),
	}
}

// Start registers the scan and housekeeping jobs with the scheduler.
func (d *dispatcher) Start() error {
	if d.started {
		return nil
	}
	scanID, err := d.sched.AddJob(ScanSpec, func() {
		d.Scan(context.Background())
	})
	if err != nil {
		return err
	}
	purgeID, err := d.sched.AddJob(HousekeepingSpec, func() {
		d.Housekeeping(context.Background())
	})
	if err != nil {
		d.sched.RemoveJob(scanID)
		return err
	}
	d.scanID = scanID
	d.purgeID = purgeID
	d.started = true
	d.log.Info("Dispatcher started.")
	return nil
}

// Stop deregisters the dispatch jobs.
func (d *dispatcher) Stop() {
	if !d.started {
		return
	}
	d.sched.RemoveJob(d.scanID)
	d.sched.RemoveJob(d.purgeID)
	d.started = false
	d.log.Info("Dispatcher stopped.")
}

// Scan runs one dispatch pass. Records already being delivered by a previous
// pass are skipped; everything else is delivered concurrently, and the pass
// returns once all of them have finished.
func (d *dispatcher) Scan(ctx context.Context) {
	now := d.clk.Now()
	due, err := d.reminderRepo.FindDue(ctx, now, now.Add(-RetryInterval))
	if err != nil {
		d.log.Error("Dispatch scan failed", err)
		return
	}
	if len(due) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, reminder := range due {
		if !d.claim(reminder.ID) {
			continue
		}
		wg.Add(1)
		go func(r *entity.Reminder) {
			defer wg.Done()
			defer d.release(r.ID)
			d.fire(ctx, r)
		}(reminder)
	}
	wg.Wait()
}

// Housekeeping purges finalized rows older than the retention window.
func (d *dispatcher) Housekeeping(ctx context.Context) {
	threshold := d.clk.Now().Add(-FinalizedRetention)
	removed, err := d.reminderRepo.PurgeFinalizedBefore(ctx, threshold)
	if err != nil {
		d.log.Error("Housekeeping failed", err)
		return
	}
	if removed > 0 {
		d.log.Info(fmt.Sprintf("Housekeeping removed %d finalized reminders", removed))
	}
}

// fire delivers one due reminder, then persists the transition. Delivery
// happens before the store write: a crash in between means the reminder is
// delivered again on the next pass, never lost.
func (d *dispatcher) fire(ctx context.Context, r *entity.Reminder) {
	deliverCtx, cancel := context.WithTimeout(ctx, DeliveryTimeout)
	defer cancel()

	if err := d.notifier.Deliver(deliverCtx, r.OwnerID, r.Text, r.ID); err != nil {
		d.log.Warn(fmt.Sprintf("Delivery of reminder %d failed: %v", r.ID, err))
		return
	}

	now := d.clk.Now()
	if err := d.persistFired(ctx, r, now); err != nil {
		d.log.Error(fmt.Sprintf("Failed to persist delivery of reminder %d", r.ID), err)
		return
	}
	d.log.Info(fmt.Sprintf("Delivered reminder %d to user %d", r.ID, r.OwnerID))
}

// persistFired applies the post-delivery transition under optimistic locking.
// On a version conflict the row is re-read; the outcome is re-applied only if
// the fresh row still belongs to the due-set. A user action that raced the
// delivery (acknowledge, snooze, cancel) moved the row out of the due-set,
// and the user's write wins: the delivery outcome is dropped.
func (d *dispatcher) persistFired(ctx context.Context, r *entity.Reminder, now time.Time) error {
	for attempt := 0; ; attempt++ {
		var err error
		if r.GetStatus() == constant.StatusNotified {
			err = lifecycle.Retry(r, now)
		} else {
			err = lifecycle.Fire(r, now)
		}
		if err != nil {
			if errors.Is(err, apperrors.ErrAlreadyFinalized) || errors.Is(err, apperrors.ErrInvalidTransition) {
				d.log.Debug(fmt.Sprintf("Reminder %d changed state during delivery, outcome dropped", r.ID))
				return nil
			}
			return err
		}

		err = d.reminderRepo.UpdateVersioned(ctx, r)
		if err == nil {
			return nil
		}
		if !errors.Is(err, apperrors.ErrVersionConflict) || attempt > 0 {
			return err
		}
		fresh, ferr := d.reminderRepo.FindByID(ctx, r.ID)
		if ferr != nil {
			if errors.Is(ferr, apperrors.ErrNotFound) {
				return nil
			}
			return ferr
		}
		if !stillDue(fresh, now) {
			d.log.Debug(fmt.Sprintf("Reminder %d left the due-set during delivery, outcome dropped", r.ID))
			return nil
		}
		r = fresh
	}
}

// stillDue reports whether the row belongs to the due-set at the given
// instant, mirroring the FindDue predicate.
func stillDue(r *entity.Reminder, now time.Time) bool {
	switch r.GetStatus() {
	case constant.StatusPending, constant.StatusSnoozed:
		return r.DueAt != nil && !r.DueAt.After(now)
	case constant.StatusNotified:
		return r.LastNotifiedAt != nil && !r.LastNotifiedAt.After(now.Add(-RetryInterval))
	default:
		return false
	}
}

func (d *dispatcher) claim(id uint) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, busy := d.inFlight[id]; busy {
		return false
	}
	d.inFlight[id] = struct{}{}
	return true
}

func (d *dispatcher) release(id uint) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.inFlight, id)
}
