package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"kharcha/internal/config"
	"kharcha/internal/log"
	"kharcha/internal/notify"
	"kharcha/internal/storage"
	"kharcha/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentNotify})
	log.SetDefault(logger)

	logger.Info("Starting reminder-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	reminderWorker := worker.NewReminderWorker(repo, notify.NewGate(repo), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := cron.New()
	_, err = c.AddFunc(cfg.ReminderCron, func() {
		if err := reminderWorker.Run(ctx); err != nil {
			logger.Error("Reminder run failed", "error", err)
		}
	})
	if err != nil {
		logger.Error("Invalid reminder schedule", "error", err, "cron", cfg.ReminderCron)
		os.Exit(1)
	}

	c.Start()
	logger.Info("Reminder schedule active", "cron", cfg.ReminderCron, "sqlite_db", cfg.SQLiteDBPath)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Shutdown signal received", "signal", sig.String())

	cancel()
	stopCtx := c.Stop()

	// Wait for any in-flight run or time out
	select {
	case <-stopCtx.Done():
		logger.Info("Reminder-worker shutdown complete")
	case <-time.After(30 * time.Second):
		logger.Warn("Shutdown timeout reached")
	}
}
