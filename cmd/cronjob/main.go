package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lodge-backend/internal/config"
	"lodge-backend/internal/jobs"
	"lodge-backend/internal/logger"
	"lodge-backend/internal/scheduler"
	"lodge-backend/internal/service"
	"lodge-backend/internal/store"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'rent-due-sweep', 'counter-cleanup', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Lodge Cronjob Runner...", "log_level", cfg.Log.Level)

	ctx := context.Background()

	// Initialize the document store
	var base store.RecordStore
	switch cfg.Store.Type {
	case "firestore":
		fs, err := store.NewFirestoreStore(ctx, cfg.Store.ProjectID, cfg.Store.CredentialsFile)
		if err != nil {
			logger.Error("Failed to connect to Firestore", "error", err)
			log.Fatalf("Failed to connect to Firestore: %v", err)
		}
		base = fs
	default:
		logger.Info("Using in-memory store; data will not survive a restart")
		base = store.NewMemoryStore()
	}
	defer base.Close()

	st := store.NewCachedStore(base, time.Duration(cfg.Cache.TTLSeconds)*time.Second)

	// Initialize the notifier
	var notifier service.Notifier
	if cfg.SendGrid.APIKey != "" {
		notifier = service.NewSendGridNotifier(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName, cfg.SendGrid.NotifyEmail)
		logger.Info("SendGrid notifier enabled", "from", cfg.SendGrid.FromEmail, "to", cfg.SendGrid.NotifyEmail)
	} else {
		notifier = service.NewNopNotifier()
		logger.Info("No SendGrid API key configured; notifications disabled")
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(st, notifier, service.SystemClock(), cfg)

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
	case "rent-due-sweep":
		jobRunner.RentDueSweep()
	case "counter-cleanup":
		jobRunner.CounterCleanup()
	case "all":
		jobRunner.RunAllJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
	}
}
