package service

import (
	"context"
	"time"

	"pingme/internal/application/dto"
)

// Notifier delivers a reminder to its owner. Satisfied by the Telegram client.
type Notifier interface {
	Deliver(ctx context.Context, ownerID int64, text string, reminderID uint) error
}

// ReminderService defines the interface for reminder business logic.
type ReminderService interface {
	// CreateFromText parses free-form text and either schedules a reminder,
	// opens a clarification for a date-only input, or reports the text as
	// unparseable. Opening a clarification supersedes any previous pending
	// one for the same owner.
	CreateFromText(ctx context.Context, req dto.CreateFromTextRequest) (*dto.CreateOutcome, error)
	// AwaitingClarification reports whether the owner has a pending
	// clarification, so free text can be routed to SupplyTime.
	AwaitingClarification(ownerID int64) bool
	// SupplyTime completes the owner's pending clarification with a
	// time-of-day answer and schedules the reminder.
	SupplyTime(ctx context.Context, ownerID int64, text string) (*dto.ReminderResponse, error)
	// CancelClarification abandons the owner's pending clarification and
	// finalizes its persisted row as cancelled.
	CancelClarification(ctx context.Context, ownerID int64) error
	// CreateScheduled creates a reminder with an explicit due time.
	CreateScheduled(ctx context.Context, req dto.CreateScheduledRequest) (*dto.ReminderResponse, error)
	// GetReminder retrieves one of the owner's reminders.
	GetReminder(ctx context.Context, ownerID int64, id uint) (*dto.ReminderResponse, error)
	// ListActive retrieves the owner's non-terminal reminders ordered by due time.
	ListActive(ctx context.Context, ownerID int64) ([]dto.ReminderResponse, error)
	// Acknowledge marks a delivered reminder as done.
	Acknowledge(ctx context.Context, ownerID int64, id uint) (*dto.ReminderResponse, error)
	// Snooze defers a delivered reminder by the owner's snooze interval and
	// returns the new due time.
	Snooze(ctx context.Context, ownerID int64, id uint) (*dto.ReminderResponse, time.Time, error)
	// Delete cancels one of the owner's reminders.
	Delete(ctx context.Context, ownerID int64, id uint) error
}
