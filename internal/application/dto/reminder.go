package dto

import (
	"time"

	"pingme/internal/domain/entity"
)

// ReminderResponse is the DTO for sending reminder information to the client.
type ReminderResponse struct {
	ID         uint       `json:"id"`
	OwnerID    int64      `json:"owner_id"`
	Text       string     `json:"text"`
	DueAt      *time.Time `json:"due_at,omitempty"`
	Status     string     `json:"status"`
	RetryCount int        `json:"retry_count"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ToReminderResponse converts an entity.Reminder to a ReminderResponse DTO.
func ToReminderResponse(r *entity.Reminder) ReminderResponse {
	return ReminderResponse{
		ID:         r.ID,
		OwnerID:    r.OwnerID,
		Text:       r.Text,
		DueAt:      r.DueAt,
		Status:     r.GetStatus().String(),
		RetryCount: r.RetryCount,
		CreatedAt:  r.CreatedAt,
	}
}

// ToReminderResponseList converts a slice of entity.Reminder to ReminderResponse DTOs.
func ToReminderResponseList(reminders []*entity.Reminder) []ReminderResponse {
	list := make([]ReminderResponse, len(reminders))
	for i, r := range reminders {
		list[i] = ToReminderResponse(r)
	}
	return list
}

// CreateFromTextRequest is the DTO for creating a reminder from free-form text.
type CreateFromTextRequest struct {
	OwnerID int64  `json:"owner_id"`
	Text    string `json:"text"`
}

// CreateOutcomeKind discriminates the result of a free-text create.
type CreateOutcomeKind int

const (
	// OutcomeCreated means the reminder was fully scheduled.
	OutcomeCreated CreateOutcomeKind = iota
	// OutcomeNeedsTime means a date was found but the time of day must be asked.
	OutcomeNeedsTime
	// OutcomeUnparseable means no temporal expression was recognized.
	OutcomeUnparseable
)

// CreateOutcome is the result of CreateFromText.
type CreateOutcome struct {
	Kind     CreateOutcomeKind
	Reminder *ReminderResponse // set for OutcomeCreated and OutcomeNeedsTime
	Date     time.Time         // resolved date for OutcomeNeedsTime
	Reason   error             // parse failure cause for OutcomeUnparseable, may be nil
}

// CreateScheduledRequest is the DTO for the REST create endpoint.
type CreateScheduledRequest struct {
	OwnerID  int64     `json:"user_id"`
	Text     string    `json:"text"`
	RemindAt time.Time `json:"remind_at"`
}
