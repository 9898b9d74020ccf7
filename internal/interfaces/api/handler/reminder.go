package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"pingme/internal/application/dto"
	"pingme/internal/application/service"
	appErrors "pingme/internal/pkg/errors"
	"pingme/internal/pkg/logger"
)

// ReminderHandler exposes the reminder REST endpoints.
type ReminderHandler struct {
	reminderService service.ReminderService
	log             logger.Logger
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(reminderService service.ReminderService, log logger.Logger) *ReminderHandler {
	return &ReminderHandler{
		reminderService: reminderService,
		log:             log,
	}
}

// List handles GET /reminders?user_id=N.
func (h *ReminderHandler) List(c echo.Context) error {
	ownerID, err := strconv.ParseInt(c.QueryParam("user_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user_id query parameter is required"})
	}

	reminders, err := h.reminderService.ListActive(c.Request().Context(), ownerID)
	if err != nil {
		h.log.Error("Failed to list reminders", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list reminders"})
	}
	return c.JSON(http.StatusOK, reminders)
}

// Create handles POST /reminders.
func (h *ReminderHandler) Create(c echo.Context) error {
	var req dto.CreateScheduledRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	reminder, err := h.reminderService.CreateScheduled(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, appErrors.ErrPastTime), errors.Is(err, appErrors.ErrUnparseable):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			h.log.Error("Failed to create reminder", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create reminder"})
		}
	}
	return c.JSON(http.StatusCreated, reminder)
}

// Get handles GET /reminders/:id?user_id=N.
func (h *ReminderHandler) Get(c echo.Context) error {
	ownerID, err := strconv.ParseInt(c.QueryParam("user_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user_id query parameter is required"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid reminder id"})
	}

	reminder, err := h.reminderService.GetReminder(c.Request().Context(), ownerID, uint(id))
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "reminder not found"})
		}
		h.log.Error("Failed to get reminder", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get reminder"})
	}
	return c.JSON(http.StatusOK, reminder)
}

// Delete handles DELETE /reminders/:id?user_id=N.
func (h *ReminderHandler) Delete(c echo.Context) error {
	ownerID, err := strconv.ParseInt(c.QueryParam("user_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user_id query parameter is required"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid reminder id"})
	}

	err = h.reminderService.Delete(c.Request().Context(), ownerID, uint(id))
	switch {
	case err == nil:
		return c.NoContent(http.StatusNoContent)
	case errors.Is(err, appErrors.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "reminder not found"})
	case errors.Is(err, appErrors.ErrAlreadyFinalized):
		return c.JSON(http.StatusConflict, map[string]string{"error": "reminder already finalized"})
	default:
		h.log.Error("Failed to delete reminder", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete reminder"})
	}
}
