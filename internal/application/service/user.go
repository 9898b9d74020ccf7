package service

import (
	"context"

	"pingme/internal/application/dto"
	"pingme/internal/domain/entity"
)

// UserService defines the interface for user-related business logic.
type UserService interface {
	// GetOrCreateUser finds a user by Telegram ID or creates one with default settings.
	GetOrCreateUser(ctx context.Context, req dto.RegisterUserRequest) (*entity.User, error)
	// GetUser finds a user by Telegram ID. Returns ErrUserNotFound if missing.
	GetUser(ctx context.Context, telegramID int64) (*entity.User, error)
	// UpdateTimezone sets the user's timezone (IANA name).
	UpdateTimezone(ctx context.Context, telegramID int64, tz string) error
	// UpdateSnoozeMinutes sets the user's snooze deferral in minutes.
	UpdateSnoozeMinutes(ctx context.Context, telegramID int64, minutes int) error
	// DeleteUser removes the user record (e.g. when the bot is blocked).
	DeleteUser(ctx context.Context, telegramID int64) error
}
