package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	// Application Layer
	appService "pingme/internal/application/service"

	// Infrastructure Layer
	"pingme/internal/infrastructure/database/sqlite"
	"pingme/internal/infrastructure/scheduler"
	"pingme/internal/infrastructure/telegram"

	// Interfaces Layer
	"pingme/internal/interfaces/api/handler"
	"pingme/internal/interfaces/api/router"

	// Packages
	"pingme/internal/pkg/clock"
	appLogger "pingme/internal/pkg/logger"

	_ "github.com/joho/godotenv/autoload" // Automatically load .env file
)

func gracefulShutdown(apiServer *http.Server, dispatcher appService.Dispatcher, cronScheduler *scheduler.Scheduler, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Println("Shutting down gracefully, press Ctrl+C again to force")

	// Stop dispatching first so no delivery races the shutdown.
	log.Println("Stopping dispatcher...")
	dispatcher.Stop()
	cronScheduler.Stop()
	log.Println("Dispatcher stopped.")

	// Close database connection
	log.Println("Closing database connection...")
	if err := sqlite.CloseDB(); err != nil {
		log.Printf("Error closing database: %v", err)
	} else {
		log.Println("Database connection closed.")
	}

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	log.Println("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {
	// --- Initialization ---
	appLog := appLogger.New()
	appLog.Info("Logger initialized.")

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080" // Default port
		appLog.Warn("PORT environment variable not set, defaulting to 8080")
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		appLog.Error("Invalid PORT environment variable", err)
		os.Exit(1)
	}

	// --- Infrastructure ---
	db := sqlite.NewDB()
	userRepo := sqlite.NewUserRepository(db)
	reminderRepo := sqlite.NewReminderRepository(db)
	appLog.Info("Database and repositories initialized.")

	tgClient := telegram.NewClient(appLog)
	cronScheduler := scheduler.NewScheduler(appLog)
	clk := clock.System()

	// --- Application Services ---
	userSvc := appService.NewUserService(userRepo, appLog)
	reminderSvc := appService.NewReminderService(reminderRepo, userRepo, clk, appLog)
	dispatcher := appService.NewDispatcher(reminderRepo, tgClient, cronScheduler, clk, appLog)
	appLog.Info("Application services initialized.")

	// --- Start Dispatching ---
	// The dispatch scan derives its working set from the store, so reminders
	// created before a restart are picked up without any recovery step.
	if err := dispatcher.Start(); err != nil {
		appLog.Error("Failed to start dispatcher", err)
		os.Exit(1)
	}

	// --- API Handlers ---
	telegramHandler := handler.NewTelegramHandler(tgClient, userSvc, reminderSvc, appLog)
	reminderHandler := handler.NewReminderHandler(reminderSvc, appLog)
	userHandler := handler.NewUserHandler(userSvc, appLog)
	appLog.Info("API handlers initialized.")

	// --- Webhook Registration ---
	if err := tgClient.SetupWebhook("/webhook"); err != nil {
		appLog.Error("Failed to set up Telegram webhook", err)
		os.Exit(1)
	}

	// --- Router ---
	routerCfg := &router.Config{
		TelegramHandler: telegramHandler,
		ReminderHandler: reminderHandler,
		UserHandler:     userHandler,
		Logger:          appLog,
	}
	echoRouter := router.NewRouter(routerCfg)

	// --- HTTP Server ---
	apiServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      echoRouter,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// --- Start Server & Shutdown Handling ---
	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, dispatcher, cronScheduler, done)

	appLog.Info(fmt.Sprintf("Server starting on port %d", port))
	err = apiServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		appLog.Error("HTTP server ListenAndServe error", err)
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for graceful shutdown signal
	<-done
	appLog.Info("Graceful shutdown complete.")
}
