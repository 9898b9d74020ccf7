package sqlite

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"pingme/internal/domain/entity"
	"pingme/internal/domain/repository"
	apperrors "pingme/internal/pkg/errors"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// FindByTelegramID retrieves a user by their Telegram ID.
func (r *userRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: telegram id %d", apperrors.ErrUserNotFound, telegramID)
		}
		return nil, fmt.Errorf("%w: failed to find user %d: %v", apperrors.ErrDatabaseOperation, telegramID, err)
	}
	return &user, nil
}

// Create creates a new user record.
func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("%w: failed to create user %d: %v", apperrors.ErrDatabaseOperation, user.TelegramID, err)
	}
	return nil
}

// Update updates an existing user record.
func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	// Use Save to update all fields, including zero values
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("%w: failed to update user %d: %v", apperrors.ErrDatabaseOperation, user.TelegramID, err)
	}
	return nil
}

// Delete deletes a user record by their Telegram ID.
func (r *userRepository) Delete(ctx context.Context, telegramID int64) error {
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).Delete(&entity.User{}).Error; err != nil {
		return fmt.Errorf("%w: failed to delete user %d: %v", apperrors.ErrDatabaseOperation, telegramID, err)
	}
	return nil
}
