package repository

import (
	"context"
	"time"

	"pingme/internal/domain/entity"
)

// ReminderRepository defines the interface for reminder data operations.
// It is the sole owner of persisted state; the dispatcher derives its whole
// working set from FindDue on every pass.
type ReminderRepository interface {
	// FindByID retrieves a reminder by its ID.
	FindByID(ctx context.Context, id uint) (*entity.Reminder, error)
	// FindByOwner retrieves reminders for an owner, optionally filtered by status.
	FindByOwner(ctx context.Context, ownerID int64, statuses ...int) ([]*entity.Reminder, error)
	// FindActiveByOwner retrieves non-terminal reminders for an owner ordered by due time.
	FindActiveByOwner(ctx context.Context, ownerID int64) ([]*entity.Reminder, error)
	// FindDue retrieves the due-set at the given instant: Pending or Snoozed
	// reminders whose due time has passed, plus Notified reminders whose last
	// delivery is at or before retryCutoff. AwaitingTime rows are never selected.
	FindDue(ctx context.Context, now time.Time, retryCutoff time.Time) ([]*entity.Reminder, error)
	// Create creates a new reminder. Returns the ID of the created reminder.
	Create(ctx context.Context, reminder *entity.Reminder) (uint, error)
	// UpdateVersioned persists reminder iff its Version still matches the
	// stored row, then bumps Version. Returns ErrVersionConflict when a
	// concurrent writer got there first.
	UpdateVersioned(ctx context.Context, reminder *entity.Reminder) error
	// PurgeFinalizedBefore hard-deletes Done and Cancelled rows last updated
	// before the threshold. Returns the number of rows removed.
	PurgeFinalizedBefore(ctx context.Context, threshold time.Time) (int64, error)
}
