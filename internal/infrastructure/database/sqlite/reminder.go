package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"pingme/internal/domain/constant"
	"pingme/internal/domain/entity"
	"pingme/internal/domain/repository"
	apperrors "pingme/internal/pkg/errors"
)

type reminderRepository struct {
	db *gorm.DB
}

// NewReminderRepository creates a new instance of ReminderRepository.
func NewReminderRepository(db *gorm.DB) repository.ReminderRepository {
	return &reminderRepository{db: db}
}

// FindByID retrieves a reminder by its ID.
func (r *reminderRepository) FindByID(ctx context.Context, id uint) (*entity.Reminder, error) {
	var reminder entity.Reminder
	if err := r.db.WithContext(ctx).First(&reminder, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: reminder %d", apperrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: failed to find reminder %d: %v", apperrors.ErrDatabaseOperation, id, err)
	}
	return &reminder, nil
}

// FindByOwner retrieves reminders for an owner, optionally filtered by status.
func (r *reminderRepository) FindByOwner(ctx context.Context, ownerID int64, statuses ...int) ([]*entity.Reminder, error) {
	var reminders []*entity.Reminder
	q := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	if err := q.Order("due_at asc").Find(&reminders).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to find reminders for owner %d: %v", apperrors.ErrDatabaseOperation, ownerID, err)
	}
	return reminders, nil
}

// FindActiveByOwner retrieves non-terminal reminders for an owner ordered by due time.
func (r *reminderRepository) FindActiveByOwner(ctx context.Context, ownerID int64) ([]*entity.Reminder, error) {
	return r.FindByOwner(ctx, ownerID,
		constant.StatusPending.Int(),
		constant.StatusAwaitingTime.Int(),
		constant.StatusNotified.Int(),
		constant.StatusSnoozed.Int(),
	)
}

// FindDue retrieves the current due-set. AwaitingTime rows are excluded by
// construction: only schedulable statuses appear in the predicate.
func (r *reminderRepository) FindDue(ctx context.Context, now time.Time, retryCutoff time.Time) ([]*entity.Reminder, error) {
	var reminders []*entity.Reminder
	err := r.db.WithContext(ctx).
		Where("(status IN ? AND due_at <= ?) OR (status = ? AND last_notified_at <= ?)",
			[]int{constant.StatusPending.Int(), constant.StatusSnoozed.Int()}, now,
			constant.StatusNotified.Int(), retryCutoff,
		).
		Order("due_at asc").
		Find(&reminders).Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query due reminders: %v", apperrors.ErrDatabaseOperation, err)
	}
	return reminders, nil
}

// Create creates a new reminder. Returns the ID of the created reminder.
func (r *reminderRepository) Create(ctx context.Context, reminder *entity.Reminder) (uint, error) {
	if err := r.db.WithContext(ctx).Create(reminder).Error; err != nil {
		return 0, fmt.Errorf("%w: failed to create reminder for owner %d: %v", apperrors.ErrDatabaseOperation, reminder.OwnerID, err)
	}
	return reminder.ID, nil
}

// UpdateVersioned persists the reminder guarded by the version the caller
// read. Zero affected rows means a concurrent writer won.
func (r *reminderRepository) UpdateVersioned(ctx context.Context, reminder *entity.Reminder) error {
	readVersion := reminder.Version
	reminder.Version = readVersion + 1
	res := r.db.WithContext(ctx).
		Model(&entity.Reminder{}).
		Where("id = ? AND version = ?", reminder.ID, readVersion).
		Select("owner_id", "text", "due_at", "status", "retry_count", "last_notified_at", "version", "updated_at").
		Updates(reminder)
	if res.Error != nil {
		reminder.Version = readVersion
		return fmt.Errorf("%w: failed to update reminder %d: %v", apperrors.ErrDatabaseOperation, reminder.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		reminder.Version = readVersion
		return fmt.Errorf("%w: reminder %d", apperrors.ErrVersionConflict, reminder.ID)
	}
	return nil
}

// PurgeFinalizedBefore hard-deletes finished rows last touched before threshold.
func (r *reminderRepository) PurgeFinalizedBefore(ctx context.Context, threshold time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status IN ? AND updated_at < ?",
			[]int{constant.StatusDone.Int(), constant.StatusCancelled.Int()}, threshold).
		Delete(&entity.Reminder{})
	if res.Error != nil {
		return 0, fmt.Errorf("%w: failed to purge finalized reminders: %v", apperrors.ErrDatabaseOperation, res.Error)
	}
	return res.RowsAffected, nil
}
