package router

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"pingme/internal/interfaces/api/handler"
	"pingme/internal/pkg/logger"
)

// Config holds the dependencies for the router.
type Config struct {
	TelegramHandler *handler.TelegramHandler
	ReminderHandler *handler.ReminderHandler
	UserHandler     *handler.UserHandler
	Logger          logger.Logger
}

// NewRouter creates and configures a new Echo router.
func NewRouter(cfg *Config) *echo.Echo {
	e := echo.New()

	// Middleware
	e.Use(middleware.RequestID())
	// Use custom logger that integrates with our logger interface
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogHost:      true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			cfg.Logger.Info(fmt.Sprintf("REQUEST: method=%s, uri=%s, status=%d, latency=%s, req_id=%s",
				v.Method, v.URI, v.Status, v.Latency, v.RequestID,
			))
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Routes
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	// Telegram webhook endpoint
	e.POST("/webhook", cfg.TelegramHandler.HandleWebhook)

	// Reminder REST endpoints
	e.GET("/reminders", cfg.ReminderHandler.List)
	e.POST("/reminders", cfg.ReminderHandler.Create)
	e.GET("/reminders/:id", cfg.ReminderHandler.Get)
	e.DELETE("/reminders/:id", cfg.ReminderHandler.Delete)

	// User settings REST endpoints
	e.GET("/users/:id", cfg.UserHandler.Get)
	e.DELETE("/users/:id", cfg.UserHandler.Delete)

	cfg.Logger.Info("Router initialized with routes.")
	return e
}
