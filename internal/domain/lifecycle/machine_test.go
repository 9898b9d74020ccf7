package lifecycle

import (
	"errors"
	"testing"
	"time"

	"pingme/internal/domain/constant"
	"pingme/internal/domain/entity"
	apperrors "pingme/internal/pkg/errors"
)

func TestNextAllowedTransitions(t *testing.T) {
	tests := []struct {
		from  constant.ReminderStatus
		event Event
		want  constant.ReminderStatus
	}{
		{constant.StatusAwaitingTime, EventTimeSupplied, constant.StatusPending},
		{constant.StatusAwaitingTime, EventCancelled, constant.StatusCancelled},
		{constant.StatusPending, EventDue, constant.StatusNotified},
		{constant.StatusPending, EventCancelled, constant.StatusCancelled},
		{constant.StatusNotified, EventAcknowledged, constant.StatusDone},
		{constant.StatusNotified, EventSnoozed, constant.StatusSnoozed},
		{constant.StatusNotified, EventRetry, constant.StatusNotified},
		{constant.StatusNotified, EventCancelled, constant.StatusCancelled},
		{constant.StatusSnoozed, EventDue, constant.StatusNotified},
		{constant.StatusSnoozed, EventCancelled, constant.StatusCancelled},
	}
	for _, tt := range tests {
		got, err := Next(tt.from, tt.event)
		if err != nil {
			t.Errorf("Next(%v, %v) error: %v", tt.from, tt.event, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Next(%v, %v) = %v, want %v", tt.from, tt.event, got, tt.want)
		}
	}
}

func TestNextTerminalStatesRejectEverything(t *testing.T) {
	events := []Event{EventTimeSupplied, EventDue, EventAcknowledged, EventSnoozed, EventRetry, EventCancelled}
	for _, status := range []constant.ReminderStatus{constant.StatusDone, constant.StatusCancelled} {
		for _, event := range events {
			got, err := Next(status, event)
			if !errors.Is(err, apperrors.ErrAlreadyFinalized) {
				t.Errorf("Next(%v, %v) error = %v, want ErrAlreadyFinalized", status, event, err)
			}
			if got != status {
				t.Errorf("Next(%v, %v) = %v, state must not change", status, event, got)
			}
		}
	}
}

func TestNextRejectsInvalidTransitions(t *testing.T) {
	tests := []struct {
		from  constant.ReminderStatus
		event Event
	}{
		{constant.StatusAwaitingTime, EventDue},
		{constant.StatusAwaitingTime, EventAcknowledged},
		{constant.StatusPending, EventAcknowledged},
		{constant.StatusPending, EventSnoozed},
		{constant.StatusPending, EventTimeSupplied},
		{constant.StatusNotified, EventDue},
		{constant.StatusSnoozed, EventAcknowledged},
		{constant.StatusSnoozed, EventSnoozed},
	}
	for _, tt := range tests {
		if _, err := Next(tt.from, tt.event); !errors.Is(err, apperrors.ErrInvalidTransition) {
			t.Errorf("Next(%v, %v) error = %v, want ErrInvalidTransition", tt.from, tt.event, err)
		}
	}
}

func TestSupplyTimeSetsDueAndResetsRetries(t *testing.T) {
	r := &entity.Reminder{Status: constant.StatusAwaitingTime.Int(), RetryCount: 2}
	due := time.Date(2026, time.February, 20, 10, 0, 0, 0, time.UTC)

	if err := SupplyTime(r, due); err != nil {
		t.Fatalf("SupplyTime: %v", err)
	}
	if r.GetStatus() != constant.StatusPending {
		t.Errorf("status = %v, want Pending", r.GetStatus())
	}
	if r.DueAt == nil || !r.DueAt.Equal(due) {
		t.Errorf("DueAt = %v, want %v", r.DueAt, due)
	}
	if r.RetryCount != 0 {
		t.Errorf("RetryCount = %d, want 0", r.RetryCount)
	}
}

func TestFireAndRetryTrackDeliveries(t *testing.T) {
	now := time.Date(2026, time.February, 20, 10, 0, 0, 0, time.UTC)
	due := now.Add(-time.Minute)
	r := &entity.Reminder{Status: constant.StatusPending.Int(), DueAt: &due}

	if err := Fire(r, now); err != nil {
		t.Fatalf("Fire: %v", err)
	}
	if r.GetStatus() != constant.StatusNotified {
		t.Fatalf("status = %v, want Notified", r.GetStatus())
	}
	if r.RetryCount != 0 || r.LastNotifiedAt == nil || !r.LastNotifiedAt.Equal(now) {
		t.Errorf("after Fire: RetryCount = %d, LastNotifiedAt = %v", r.RetryCount, r.LastNotifiedAt)
	}

	later := now.Add(15 * time.Minute)
	if err := Retry(r, later); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if r.RetryCount != 1 || !r.LastNotifiedAt.Equal(later) {
		t.Errorf("after Retry: RetryCount = %d, LastNotifiedAt = %v", r.RetryCount, r.LastNotifiedAt)
	}
}

func TestSnoozeDefersAndResetsRetries(t *testing.T) {
	now := time.Date(2026, time.February, 20, 10, 0, 0, 0, time.UTC)
	r := &entity.Reminder{Status: constant.StatusNotified.Int(), RetryCount: 3, LastNotifiedAt: &now}
	until := now.Add(time.Hour)

	if err := Snooze(r, until); err != nil {
		t.Fatalf("Snooze: %v", err)
	}
	if r.GetStatus() != constant.StatusSnoozed {
		t.Errorf("status = %v, want Snoozed", r.GetStatus())
	}
	if r.DueAt == nil || !r.DueAt.Equal(until) {
		t.Errorf("DueAt = %v, want %v", r.DueAt, until)
	}
	if r.RetryCount != 0 {
		t.Errorf("RetryCount = %d, want 0", r.RetryCount)
	}
}

func TestAcknowledgeAndCancelAreTerminal(t *testing.T) {
	r := &entity.Reminder{Status: constant.StatusNotified.Int()}
	if err := Acknowledge(r); err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	if r.GetStatus() != constant.StatusDone {
		t.Fatalf("status = %v, want Done", r.GetStatus())
	}
	if err := Cancel(r); !errors.Is(err, apperrors.ErrAlreadyFinalized) {
		t.Errorf("Cancel after Done error = %v, want ErrAlreadyFinalized", err)
	}

	r = &entity.Reminder{Status: constant.StatusPending.Int()}
	if err := Cancel(r); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if r.GetStatus() != constant.StatusCancelled {
		t.Errorf("status = %v, want Cancelled", r.GetStatus())
	}
	if err := Acknowledge(r); !errors.Is(err, apperrors.ErrAlreadyFinalized) {
		t.Errorf("Acknowledge after Cancel error = %v, want ErrAlreadyFinalized", err)
	}
}
