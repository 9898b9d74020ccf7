package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pingme/internal/application/dto"
	"pingme/internal/domain/constant"
	"pingme/internal/domain/entity"
	"pingme/internal/domain/lifecycle"
	"pingme/internal/domain/repository"
	"pingme/internal/pkg/clock"
	apperrors "pingme/internal/pkg/errors"
	"pingme/internal/pkg/logger"
	"pingme/internal/timeparse"
)

type reminderService struct {
	reminderRepo repository.ReminderRepository
	userRepo     repository.UserRepository
	clk          clock.Clock
	log          logger.Logger
	clarify      *clarifyStore
}

// NewReminderService creates a new instance of ReminderService implementation.
func NewReminderService(
	reminderRepo repository.ReminderRepository,
	userRepo repository.UserRepository,
	clk clock.Clock,
	log logger.Logger,
) ReminderService {
	return &reminderService{
		reminderRepo: reminderRepo,
		userRepo:     userRepo,
		clk:          clk,
		log:          log,
		clarify:      newClarifyStore(),
	}
}

// CreateFromText parses free-form text and either schedules a reminder or
// opens a clarification for a date-only input.
func (s *reminderService) CreateFromText(ctx context.Context, req dto.CreateFromTextRequest) (*dto.CreateOutcome, error) {
	loc := s.ownerLocation(ctx, req.OwnerID)
	now := s.clk.Now()

	result := timeparse.Parse(req.Text, now, loc)
	switch result.Kind {
	case timeparse.Resolved:
		due := result.DueAt
		reminder := &entity.Reminder{
			OwnerID: req.OwnerID,
			Text:    result.Message,
			DueAt:   &due,
			Status:  constant.StatusPending.Int(),
		}
		if _, err := s.reminderRepo.Create(ctx, reminder); err != nil {
			s.log.Error("Failed to create reminder", err)
			return nil, err
		}
		if prev, had := s.clarify.clear(req.OwnerID); had {
			// A complete new request supersedes an unanswered question.
			s.cancelRow(ctx, prev.ReminderID)
		}
		s.log.Info(fmt.Sprintf("Created reminder %d for user %d, due %s", reminder.ID, req.OwnerID, due.Format(time.RFC3339)))
		resp := dto.ToReminderResponse(reminder)
		return &dto.CreateOutcome{Kind: dto.OutcomeCreated, Reminder: &resp}, nil

	case timeparse.DateOnly:
		date := result.Date
		reminder := &entity.Reminder{
			OwnerID: req.OwnerID,
			Text:    result.Message,
			DueAt:   &date,
			Status:  constant.StatusAwaitingTime.Int(),
		}
		if _, err := s.reminderRepo.Create(ctx, reminder); err != nil {
			s.log.Error("Failed to create reminder", err)
			return nil, err
		}
		prev, had := s.clarify.begin(req.OwnerID, pendingClarification{
			ReminderID: reminder.ID,
			Message:    result.Message,
			Date:       date,
			CreatedAt:  now,
		})
		if had {
			// A newer question replaces the old one; its row is abandoned.
			s.cancelRow(ctx, prev.ReminderID)
		}
		s.log.Info(fmt.Sprintf("Reminder %d for user %d awaits a time of day", reminder.ID, req.OwnerID))
		resp := dto.ToReminderResponse(reminder)
		return &dto.CreateOutcome{Kind: dto.OutcomeNeedsTime, Reminder: &resp, Date: date}, nil

	default:
		return &dto.CreateOutcome{Kind: dto.OutcomeUnparseable, Reason: result.Reason}, nil
	}
}

// AwaitingClarification reports whether the owner has a pending clarification.
func (s *reminderService) AwaitingClarification(ownerID int64) bool {
	_, ok := s.clarify.get(ownerID)
	return ok
}

// SupplyTime completes the owner's pending clarification with a time of day.
func (s *reminderService) SupplyTime(ctx context.Context, ownerID int64, text string) (*dto.ReminderResponse, error) {
	rec, ok := s.clarify.get(ownerID)
	if !ok {
		return nil, apperrors.ErrNoPendingClarification
	}

	hour, minute, err := timeparse.ParseClockTime(text)
	if err != nil {
		// The clarification stays open so the user can answer again.
		return nil, err
	}

	due := time.Date(rec.Date.Year(), rec.Date.Month(), rec.Date.Day(), hour, minute, 0, 0, rec.Date.Location())
	if !due.After(s.clk.Now()) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrPastTime, due.Format("02.01.2006 15:04"))
	}

	reminder, err := s.mutate(ctx, rec.ReminderID, func(r *entity.Reminder) error {
		return lifecycle.SupplyTime(r, due)
	})
	if err != nil {
		return nil, err
	}
	s.clarify.clear(ownerID)
	s.log.Info(fmt.Sprintf("Reminder %d for user %d scheduled at %s", reminder.ID, ownerID, due.Format(time.RFC3339)))
	resp := dto.ToReminderResponse(reminder)
	return &resp, nil
}

// CancelClarification abandons the owner's pending clarification.
func (s *reminderService) CancelClarification(ctx context.Context, ownerID int64) error {
	rec, ok := s.clarify.clear(ownerID)
	if !ok {
		return apperrors.ErrNoPendingClarification
	}
	s.cancelRow(ctx, rec.ReminderID)
	return nil
}

// CreateScheduled creates a reminder with an explicit due time.
func (s *reminderService) CreateScheduled(ctx context.Context, req dto.CreateScheduledRequest) (*dto.ReminderResponse, error) {
	if req.Text == "" {
		return nil, fmt.Errorf("%w: пустой текст напоминания", apperrors.ErrUnparseable)
	}
	if !req.RemindAt.After(s.clk.Now()) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrPastTime, req.RemindAt.Format(time.RFC3339))
	}
	due := req.RemindAt
	reminder := &entity.Reminder{
		OwnerID: req.OwnerID,
		Text:    req.Text,
		DueAt:   &due,
		Status:  constant.StatusPending.Int(),
	}
	if _, err := s.reminderRepo.Create(ctx, reminder); err != nil {
		s.log.Error("Failed to create reminder", err)
		return nil, err
	}
	resp := dto.ToReminderResponse(reminder)
	return &resp, nil
}

// GetReminder retrieves one of the owner's reminders.
func (s *reminderService) GetReminder(ctx context.Context, ownerID int64, id uint) (*dto.ReminderResponse, error) {
	reminder, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	resp := dto.ToReminderResponse(reminder)
	return &resp, nil
}

// ListActive retrieves the owner's non-terminal reminders.
func (s *reminderService) ListActive(ctx context.Context, ownerID int64) ([]dto.ReminderResponse, error) {
	reminders, err := s.reminderRepo.FindActiveByOwner(ctx, ownerID)
	if err != nil {
		s.log.Error(fmt.Sprintf("Failed to list reminders for user %d", ownerID), err)
		return nil, err
	}
	return dto.ToReminderResponseList(reminders), nil
}

// Acknowledge marks a delivered reminder as done.
func (s *reminderService) Acknowledge(ctx context.Context, ownerID int64, id uint) (*dto.ReminderResponse, error) {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return nil, err
	}
	reminder, err := s.mutate(ctx, id, func(r *entity.Reminder) error {
		return lifecycle.Acknowledge(r)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(fmt.Sprintf("Reminder %d acknowledged by user %d", id, ownerID))
	resp := dto.ToReminderResponse(reminder)
	return &resp, nil
}

// Snooze defers a delivered reminder by the owner's snooze interval.
func (s *reminderService) Snooze(ctx context.Context, ownerID int64, id uint) (*dto.ReminderResponse, time.Time, error) {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return nil, time.Time{}, err
	}
	interval := entity.DefaultSnoozeMinutes * time.Minute
	if user, err := s.userRepo.FindByTelegramID(ctx, ownerID); err == nil {
		interval = user.SnoozeInterval()
	}
	until := s.clk.Now().Add(interval)
	reminder, err := s.mutate(ctx, id, func(r *entity.Reminder) error {
		return lifecycle.Snooze(r, until)
	})
	if err != nil {
		return nil, time.Time{}, err
	}
	s.log.Info(fmt.Sprintf("Reminder %d snoozed by user %d until %s", id, ownerID, until.Format(time.RFC3339)))
	resp := dto.ToReminderResponse(reminder)
	return &resp, until, nil
}

// Delete cancels one of the owner's reminders.
func (s *reminderService) Delete(ctx context.Context, ownerID int64, id uint) error {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return err
	}
	if _, err := s.mutate(ctx, id, func(r *entity.Reminder) error {
		return lifecycle.Cancel(r)
	}); err != nil {
		return err
	}
	if rec, ok := s.clarify.get(ownerID); ok && rec.ReminderID == id {
		s.clarify.clear(ownerID)
	}
	s.log.Info(fmt.Sprintf("Reminder %d cancelled by user %d", id, ownerID))
	return nil
}

// owned loads the reminder and verifies it belongs to ownerID.
func (s *reminderService) owned(ctx context.Context, ownerID int64, id uint) (*entity.Reminder, error) {
	reminder, err := s.reminderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reminder.OwnerID != ownerID {
		return nil, apperrors.ErrNotFound
	}
	return reminder, nil
}

// mutate applies a lifecycle change under optimistic locking, re-reading and
// reapplying once if a concurrent writer bumped the version first.
func (s *reminderService) mutate(ctx context.Context, id uint, apply func(*entity.Reminder) error) (*entity.Reminder, error) {
	for attempt := 0; ; attempt++ {
		reminder, err := s.reminderRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := apply(reminder); err != nil {
			return nil, err
		}
		err = s.reminderRepo.UpdateVersioned(ctx, reminder)
		if err == nil {
			return reminder, nil
		}
		if !errors.Is(err, apperrors.ErrVersionConflict) || attempt > 0 {
			return nil, err
		}
		s.log.Debug(fmt.Sprintf("Version conflict on reminder %d, retrying", id))
	}
}

// cancelRow finalizes a reminder row as cancelled, tolerating rows that are
// already gone or already final.
func (s *reminderService) cancelRow(ctx context.Context, id uint) {
	_, err := s.mutate(ctx, id, func(r *entity.Reminder) error {
		return lifecycle.Cancel(r)
	})
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrAlreadyFinalized) {
		s.log.Warn(fmt.Sprintf("Failed to cancel superseded reminder %d: %v", id, err))
	}
}

func (s *reminderService) ownerLocation(ctx context.Context, ownerID int64) *time.Location {
	user, err := s.userRepo.FindByTelegramID(ctx, ownerID)
	if err != nil {
		loc, lerr := time.LoadLocation(entity.DefaultTimezone)
		if lerr != nil {
			return time.UTC
		}
		return loc
	}
	return user.Location()
}
