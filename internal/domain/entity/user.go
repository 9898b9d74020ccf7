package entity

import "time"

// Defaults applied when a user has no explicit settings.
const (
	DefaultTimezone      = "Europe/Moscow"
	DefaultSnoozeMinutes = 60
)

// User represents a Telegram user together with their reminder settings.
type User struct {
	TelegramID    int64     `gorm:"column:telegram_id;primaryKey"`
	Username      *string   `gorm:"column:username"`
	FirstName     *string   `gorm:"column:first_name"`
	Timezone      string    `gorm:"column:timezone"`
	SnoozeMinutes int       `gorm:"column:snooze_minutes"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

// TableName specifies the table name for the User entity.
func (User) TableName() string {
	return "users"
}

// SnoozeInterval returns the user's snooze deferral as a duration.
func (u *User) SnoozeInterval() time.Duration {
	minutes := u.SnoozeMinutes
	if minutes <= 0 {
		minutes = DefaultSnoozeMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// Location resolves the user's timezone, falling back to the default zone.
func (u *User) Location() *time.Location {
	name := u.Timezone
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		loc, err = time.LoadLocation(DefaultTimezone)
		if err != nil {
			return time.UTC
		}
	}
	return loc
}
