package entity

import (
	"time"

	"pingme/internal/domain/constant"
)

// Reminder represents a single reminder owned by a Telegram user.
//
// DueAt is nil only while the row is being constructed; an AwaitingTime row
// holds the resolved date at midnight in the owner's zone until the time of
// day is supplied. Version implements optimistic locking: every persisted
// update is guarded by the version the writer last read.
type Reminder struct {
	ID             uint       `gorm:"primaryKey;autoIncrement"`
	OwnerID        int64      `gorm:"column:owner_id;index"`
	Text           string     `gorm:"column:text;type:text"`
	DueAt          *time.Time `gorm:"column:due_at;index"`
	Status         int        `gorm:"column:status;index"`
	RetryCount     int        `gorm:"column:retry_count"`
	LastNotifiedAt *time.Time `gorm:"column:last_notified_at"`
	Version        int64      `gorm:"column:version"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

// TableName specifies the table name for the Reminder entity.
func (Reminder) TableName() string {
	return "reminders"
}

// GetStatus returns the reminder status as a ReminderStatus type.
func (r *Reminder) GetStatus() constant.ReminderStatus {
	return constant.ReminderStatus(r.Status)
}

// SetStatus sets the reminder status.
func (r *Reminder) SetStatus(status constant.ReminderStatus) {
	r.Status = status.Int()
}

// Due reports the due time, or the zero time if none is set yet.
func (r *Reminder) Due() time.Time {
	if r.DueAt == nil {
		return time.Time{}
	}
	return *r.DueAt
}
