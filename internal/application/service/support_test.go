package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"pingme/internal/domain/constant"
	"pingme/internal/domain/entity"
	apperrors "pingme/internal/pkg/errors"
)

type nopLogger struct{}

func (nopLogger) Error(string, error) {}
func (nopLogger) Warn(string)         {}
func (nopLogger) Info(string)         {}
func (nopLogger) Debug(string)        {}

// memReminderRepo is an in-memory ReminderRepository with the same versioning
// contract as the SQLite implementation.
type memReminderRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]entity.Reminder
}

func newMemReminderRepo() *memReminderRepo {
	return &memReminderRepo{rows: make(map[uint]entity.Reminder)}
}

func (m *memReminderRepo) FindByID(_ context.Context, id uint) (*entity.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copy := row
	return &copy, nil
}

func (m *memReminderRepo) FindByOwner(_ context.Context, ownerID int64, statuses ...int) ([]*entity.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Reminder
	for _, row := range m.rows {
		if row.OwnerID != ownerID {
			continue
		}
		if len(statuses) > 0 && !containsStatus(statuses, row.Status) {
			continue
		}
		copy := row
		out = append(out, &copy)
	}
	sortByDue(out)
	return out, nil
}

func (m *memReminderRepo) FindActiveByOwner(_ context.Context, ownerID int64) ([]*entity.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Reminder
	for _, row := range m.rows {
		if row.OwnerID != ownerID || constant.ReminderStatus(row.Status).IsTerminal() {
			continue
		}
		copy := row
		out = append(out, &copy)
	}
	sortByDue(out)
	return out, nil
}

func (m *memReminderRepo) FindDue(_ context.Context, now time.Time, retryCutoff time.Time) ([]*entity.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Reminder
	for _, row := range m.rows {
		switch constant.ReminderStatus(row.Status) {
		case constant.StatusPending, constant.StatusSnoozed:
			if row.DueAt != nil && !row.DueAt.After(now) {
				copy := row
				out = append(out, &copy)
			}
		case constant.StatusNotified:
			if row.LastNotifiedAt != nil && !row.LastNotifiedAt.After(retryCutoff) {
				copy := row
				out = append(out, &copy)
			}
		}
	}
	sortByDue(out)
	return out, nil
}

func (m *memReminderRepo) Create(_ context.Context, reminder *entity.Reminder) (uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	reminder.ID = m.nextID
	reminder.CreatedAt = time.Now()
	reminder.UpdatedAt = reminder.CreatedAt
	m.rows[reminder.ID] = *reminder
	return reminder.ID, nil
}

func (m *memReminderRepo) UpdateVersioned(_ context.Context, reminder *entity.Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.rows[reminder.ID]
	if !ok || stored.Version != reminder.Version {
		return apperrors.ErrVersionConflict
	}
	reminder.Version++
	reminder.UpdatedAt = time.Now()
	m.rows[reminder.ID] = *reminder
	return nil
}

func (m *memReminderRepo) PurgeFinalizedBefore(_ context.Context, threshold time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for id, row := range m.rows {
		if constant.ReminderStatus(row.Status).IsTerminal() && row.UpdatedAt.Before(threshold) {
			delete(m.rows, id)
			removed++
		}
	}
	return removed, nil
}

// seed inserts a row directly, bypassing lifecycle checks.
func (m *memReminderRepo) seed(row entity.Reminder) uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	row.ID = m.nextID
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = time.Now()
	}
	m.rows[row.ID] = row
	return row.ID
}

func (m *memReminderRepo) get(id uint) (entity.Reminder, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	return row, ok
}

func containsStatus(statuses []int, status int) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func sortByDue(rows []*entity.Reminder) {
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Due().Before(rows[j].Due())
	})
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[int64]entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[int64]entity.User)}
}

func (m *memUserRepo) FindByTelegramID(_ context.Context, telegramID int64) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[telegramID]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	copy := user
	return &copy, nil
}

func (m *memUserRepo) Create(_ context.Context, user *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.TelegramID] = *user
	return nil
}

func (m *memUserRepo) Update(_ context.Context, user *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.TelegramID]; !ok {
		return apperrors.ErrUserNotFound
	}
	m.users[user.TelegramID] = *user
	return nil
}

func (m *memUserRepo) Delete(_ context.Context, telegramID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, telegramID)
	return nil
}

// fakeNotifier records deliveries and can be switched to fail.
type fakeNotifier struct {
	mu        sync.Mutex
	fail      bool
	delivered []uint
}

func (f *fakeNotifier) Deliver(_ context.Context, _ int64, _ string, reminderID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return apperrors.ErrNotifierUnavailable
	}
	f.delivered = append(f.delivered, reminderID)
	return nil
}

func (f *fakeNotifier) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func (f *fakeNotifier) deliveries() []uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint(nil), f.delivered...)
}
