package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"rental-mngt-admin/internal/config"
	"rental-mngt-admin/internal/gateway"
	"rental-mngt-admin/internal/jobs"
	"rental-mngt-admin/internal/logger"
	"rental-mngt-admin/internal/repository/postgres"
	"rental-mngt-admin/internal/scheduler"
	"rental-mngt-admin/internal/security"
	"rental-mngt-admin/internal/service"
	"rental-mngt-admin/internal/store"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'send-maintenance-reminders', 'all-nightly')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting rental-mngt cronjob runner...", "log_level", cfg.Log.Level)
	if cfg.API.ServiceToken == "" {
		logger.Warn("No API service token configured, reminder jobs will be rejected by the API")
	}

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	repos := postgres.NewStore(db)

	// Initialize Services
	inspector := security.NewTokenInspector(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryLeewaySeconds)*time.Second)
	api := gateway.NewClient(cfg.API.BaseURL, cfg.APITimeout(), inspector)
	noteSvc := service.NewNotificationService(repos.NotificationRepository)

	jobServices := &jobs.Services{
		Email:     service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.From, cfg.SendGrid.FromName),
		ChangeLog: service.NewChangeLogService(repos.ChangeEventRepository),
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(store.New(api, noteSvc, nil), jobServices, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "send-maintenance-reminders":
		jobRunner.SendMaintenanceReminders()
	case "send-unpaid-reminders":
		jobRunner.SendUnpaidReminders()
	case "purge-change-log":
		jobRunner.PurgeChangeLog()
	case "all-nightly":
		jobRunner.RunAllNightlyJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - send-maintenance-reminders\n")
		fmt.Printf("  - send-unpaid-reminders\n")
		fmt.Printf("  - purge-change-log\n")
		fmt.Printf("  - all-nightly\n")
		os.Exit(1)
	}
}
