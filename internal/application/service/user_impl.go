package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"pingme/internal/application/dto"
	"pingme/internal/domain/entity"
	"pingme/internal/domain/repository"
	apperrors "pingme/internal/pkg/errors"
	"pingme/internal/pkg/logger"
)

type userService struct {
	userRepo repository.UserRepository
	log      logger.Logger
}

// NewUserService creates a new instance of UserService implementation.
func NewUserService(userRepo repository.UserRepository, log logger.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		log:      log,
	}
}

// GetOrCreateUser finds a user by Telegram ID or creates one with default settings.
func (s *userService) GetOrCreateUser(ctx context.Context, req dto.RegisterUserRequest) (*entity.User, error) {
	user, err := s.userRepo.FindByTelegramID(ctx, req.TelegramID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			s.log.Info(fmt.Sprintf("User %d not found, creating new user.", req.TelegramID))
			newUser := &entity.User{
				TelegramID:    req.TelegramID,
				Username:      req.Username,
				FirstName:     req.FirstName,
				Timezone:      defaultTimezone(),
				SnoozeMinutes: entity.DefaultSnoozeMinutes,
			}
			if createErr := s.userRepo.Create(ctx, newUser); createErr != nil {
				s.log.Error("Failed to create user", createErr)
				return nil, createErr
			}
			return newUser, nil
		}
		s.log.Error(fmt.Sprintf("Failed to find user %d", req.TelegramID), err)
		return nil, err
	}
	return user, nil
}

// GetUser finds a user by Telegram ID.
func (s *userService) GetUser(ctx context.Context, telegramID int64) (*entity.User, error) {
	return s.userRepo.FindByTelegramID(ctx, telegramID)
}

// UpdateTimezone sets the user's timezone after validating the IANA name.
func (s *userService) UpdateTimezone(ctx context.Context, telegramID int64, tz string) error {
	if _, err := time.LoadLocation(tz); err != nil {
		return fmt.Errorf("%w: неизвестный часовой пояс %q", apperrors.ErrUnparseable, tz)
	}
	user, err := s.userRepo.FindByTelegramID(ctx, telegramID)
	if err != nil {
		return err
	}
	user.Timezone = tz
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	s.log.Info(fmt.Sprintf("Updated timezone for user %d to %s", telegramID, tz))
	return nil
}

// UpdateSnoozeMinutes sets the user's snooze deferral.
func (s *userService) UpdateSnoozeMinutes(ctx context.Context, telegramID int64, minutes int) error {
	if minutes < 1 || minutes > 24*60 {
		return fmt.Errorf("%w: интервал откладывания должен быть от 1 минуты до суток", apperrors.ErrUnparseable)
	}
	user, err := s.userRepo.FindByTelegramID(ctx, telegramID)
	if err != nil {
		return err
	}
	user.SnoozeMinutes = minutes
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	s.log.Info(fmt.Sprintf("Updated snooze interval for user %d to %d minutes", telegramID, minutes))
	return nil
}

// defaultTimezone is the zone assigned to new users: the TIMEZONE environment
// variable when it names a valid zone, Europe/Moscow otherwise.
func defaultTimezone() string {
	if tz := os.Getenv("TIMEZONE"); tz != "" {
		if _, err := time.LoadLocation(tz); err == nil {
			return tz
		}
	}
	return entity.DefaultTimezone
}

// DeleteUser removes the user record.
func (s *userService) DeleteUser(ctx context.Context, telegramID int64) error {
	if _, err := s.userRepo.FindByTelegramID(ctx, telegramID); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, telegramID); err != nil {
		s.log.Error(fmt.Sprintf("Failed to delete user %d", telegramID), err)
		return err
	}
	s.log.Info(fmt.Sprintf("Deleted user %d", telegramID))
	return nil
}
