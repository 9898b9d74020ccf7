// Package lifecycle is the authoritative state machine for reminders.
//
// Allowed transitions:
//
//	AwaitingTime --time supplied--> Pending
//	Pending      --due reached----> Notified
//	Notified     --acknowledged---> Done
//	Notified     --snooze---------> Snoozed
//	Notified     --retry----------> Notified (redelivery)
//	Snoozed      --due reached----> Notified
//	any non-terminal --delete-----> Cancelled
//
// Done and Cancelled are terminal: any transition attempted from them
// reports ErrAlreadyFinalized and leaves the reminder untouched.
package lifecycle

import (
	"fmt"
	"time"

	"pingme/internal/domain/constant"
	"pingme/internal/domain/entity"
	apperrors "pingme/internal/pkg/errors"
)

// Event identifies a lifecycle transition trigger.
type Event int

const (
	// EventTimeSupplied completes a clarification with a concrete due time.
	EventTimeSupplied Event = iota
	// EventDue fires a Pending or Snoozed reminder whose due time has passed.
	EventDue
	// EventAcknowledged marks a delivered reminder as resolved by the user.
	EventAcknowledged
	// EventSnoozed defers a delivered reminder to a later due time.
	EventSnoozed
	// EventRetry redelivers an unacknowledged reminder.
	EventRetry
	// EventCancelled deletes a reminder before completion.
	EventCancelled
)

func (e Event) String() string {
	switch e {
	case EventTimeSupplied:
		return "time_supplied"
	case EventDue:
		return "due"
	case EventAcknowledged:
		return "acknowledged"
	case EventSnoozed:
		return "snoozed"
	case EventRetry:
		return "retry"
	case EventCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

var transitions = map[constant.ReminderStatus]map[Event]constant.ReminderStatus{
	constant.StatusAwaitingTime: {
		EventTimeSupplied: constant.StatusPending,
		EventCancelled:    constant.StatusCancelled,
	},
	constant.StatusPending: {
		EventDue:       constant.StatusNotified,
		EventCancelled: constant.StatusCancelled,
	},
	constant.StatusNotified: {
		EventAcknowledged: constant.StatusDone,
		EventSnoozed:      constant.StatusSnoozed,
		EventRetry:        constant.StatusNotified,
		EventCancelled:    constant.StatusCancelled,
	},
	constant.StatusSnoozed: {
		EventDue:       constant.StatusNotified,
		EventCancelled: constant.StatusCancelled,
	},
}

// Next returns the state reached by applying event to status.
// Terminal states report ErrAlreadyFinalized; otherwise an event not allowed
// for the state reports ErrInvalidTransition.
func Next(status constant.ReminderStatus, event Event) (constant.ReminderStatus, error) {
	if status.IsTerminal() {
		return status, fmt.Errorf("%w: %s in state %s", apperrors.ErrAlreadyFinalized, event, status)
	}
	next, ok := transitions[status][event]
	if !ok {
		return status, fmt.Errorf("%w: %s in state %s", apperrors.ErrInvalidTransition, event, status)
	}
	return next, nil
}

// SupplyTime completes a clarification: AwaitingTime -> Pending with the
// combined due time.
func SupplyTime(r *entity.Reminder, due time.Time) error {
	next, err := Next(r.GetStatus(), EventTimeSupplied)
	if err != nil {
		return err
	}
	r.SetStatus(next)
	r.DueAt = &due
	r.RetryCount = 0
	return nil
}

// Fire transitions a due Pending or Snoozed reminder into Notified after a
// successful delivery at the given instant.
func Fire(r *entity.Reminder, now time.Time) error {
	next, err := Next(r.GetStatus(), EventDue)
	if err != nil {
		return err
	}
	r.SetStatus(next)
	r.RetryCount = 0
	r.LastNotifiedAt = &now
	return nil
}

// Retry records one more delivery of an unacknowledged Notified reminder.
func Retry(r *entity.Reminder, now time.Time) error {
	next, err := Next(r.GetStatus(), EventRetry)
	if err != nil {
		return err
	}
	r.SetStatus(next)
	r.RetryCount++
	r.LastNotifiedAt = &now
	return nil
}

// Acknowledge finalizes a delivered reminder as Done.
func Acknowledge(r *entity.Reminder) error {
	next, err := Next(r.GetStatus(), EventAcknowledged)
	if err != nil {
		return err
	}
	r.SetStatus(next)
	return nil
}

// Snooze defers a delivered reminder until the given due time and resets the
// retry counter.
func Snooze(r *entity.Reminder, until time.Time) error {
	next, err := Next(r.GetStatus(), EventSnoozed)
	if err != nil {
		return err
	}
	r.SetStatus(next)
	r.DueAt = &until
	r.RetryCount = 0
	return nil
}

// Cancel finalizes a reminder as Cancelled from any non-terminal state.
func Cancel(r *entity.Reminder) error {
	next, err := Next(r.GetStatus(), EventCancelled)
	if err != nil {
		return err
	}
	r.SetStatus(next)
	return nil
}
