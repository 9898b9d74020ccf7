package dto

import "pingme/internal/domain/entity"

// RegisterUserRequest is the DTO for creating or refreshing a user record.
type RegisterUserRequest struct {
	TelegramID int64   `json:"telegram_id"`
	Username   *string `json:"username,omitempty"`
	FirstName  *string `json:"first_name,omitempty"`
}

// UserResponse is the DTO for user settings.
type UserResponse struct {
	TelegramID    int64  `json:"telegram_id"`
	Timezone      string `json:"timezone"`
	SnoozeMinutes int    `json:"snooze_minutes"`
}

// ToUserResponse converts an entity.User to a UserResponse DTO.
func ToUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		TelegramID:    u.TelegramID,
		Timezone:      u.Timezone,
		SnoozeMinutes: u.SnoozeMinutes,
	}
}
