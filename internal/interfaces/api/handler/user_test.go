package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"pingme/internal/application/dto"
	"pingme/internal/domain/entity"
	apperrors "pingme/internal/pkg/errors"
)

// stubUserService returns canned responses for the user settings endpoints.
type stubUserService struct {
	user      *entity.User
	getErr    error
	deleteErr error
	deleted   []int64
}

func (s *stubUserService) GetOrCreateUser(context.Context, dto.RegisterUserRequest) (*entity.User, error) {
	return s.user, nil
}
func (s *stubUserService) GetUser(context.Context, int64) (*entity.User, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.user, nil
}
func (s *stubUserService) UpdateTimezone(context.Context, int64, string) error   { return nil }
func (s *stubUserService) UpdateSnoozeMinutes(context.Context, int64, int) error { return nil }
func (s *stubUserService) DeleteUser(_ context.Context, telegramID int64) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, telegramID)
	return nil
}

func TestGetUserReturnsSettings(t *testing.T) {
	svc := &stubUserService{user: &entity.User{TelegramID: 42, Timezone: "Europe/Moscow", SnoozeMinutes: 15}}
	h := NewUserHandler(svc, nopLogger{})
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/users/42", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/users/:id")
	c.SetParamNames("id")
	c.SetParamValues("42")

	if err := h.Get(c); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got dto.UserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got.TelegramID != 42 || got.Timezone != "Europe/Moscow" || got.SnoozeMinutes != 15 {
		t.Errorf("body = %+v, want the stored settings", got)
	}
}

func TestGetUserStatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		err      error
		wantCode int
	}{
		{"bad id", "abc", nil, http.StatusBadRequest},
		{"not found", "42", apperrors.ErrUserNotFound, http.StatusNotFound},
		{"storage failure", "42", apperrors.ErrDatabaseOperation, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewUserHandler(&stubUserService{getErr: tt.err}, nopLogger{})
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/users/"+tt.id, nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetPath("/users/:id")
			c.SetParamNames("id")
			c.SetParamValues(tt.id)

			if err := h.Get(c); err != nil {
				t.Fatalf("Get: %v", err)
			}
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestDeleteUserStatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"ok", nil, http.StatusNoContent},
		{"not found", apperrors.ErrUserNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubUserService{deleteErr: tt.err}
			h := NewUserHandler(svc, nopLogger{})
			e := echo.New()
			req := httptest.NewRequest(http.MethodDelete, "/users/42", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetPath("/users/:id")
			c.SetParamNames("id")
			c.SetParamValues("42")

			if err := h.Delete(c); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.err == nil && (len(svc.deleted) != 1 || svc.deleted[0] != 42) {
				t.Errorf("deleted = %v, want [42]", svc.deleted)
			}
		})
	}
}
