package repository

import (
	"context"

	"pingme/internal/domain/entity"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	// FindByTelegramID retrieves a user by their Telegram ID.
	FindByTelegramID(ctx context.Context, telegramID int64) (*entity.User, error)
	// Create creates a new user record.
	Create(ctx context.Context, user *entity.User) error
	// Update updates an existing user record.
	Update(ctx context.Context, user *entity.User) error
	// Delete deletes a user record by their Telegram ID.
	Delete(ctx context.Context, telegramID int64) error
}
