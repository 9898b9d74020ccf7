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

// UserHandler exposes the user settings REST endpoints.
type UserHandler struct {
	userService service.UserService
	log         logger.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService, log logger.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		log:         log,
	}
}

// Get handles GET /users/:id.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid user id"})
	}

	user, err := h.userService.GetUser(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, appErrors.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
		}
		h.log.Error("Failed to get user", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": appErrors.ErrInternalServer.Error()})
	}
	return c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// Delete handles DELETE /users/:id. Reminders owned by the user are left to
// housekeeping once they finalize.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid user id"})
	}

	if err := h.userService.DeleteUser(c.Request().Context(), id); err != nil {
		if errors.Is(err, appErrors.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
		}
		h.log.Error("Failed to delete user", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": appErrors.ErrInternalServer.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}
