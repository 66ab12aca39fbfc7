package jobs

import (
	"lodge-backend/internal/config"
	"lodge-backend/internal/logger"
	"lodge-backend/internal/service"
	"lodge-backend/internal/store"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	st       store.RecordStore
	notifier service.Notifier
	clock    service.Clock
	config   *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(st store.RecordStore, notifier service.Notifier, clock service.Clock, cfg *config.Config) *JobRunner {
	return &JobRunner{
		st:       st,
		notifier: notifier,
		clock:    clock,
		config:   cfg,
	}
}

// Config exposes the runner's configuration to the scheduler
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllJobs runs every job once (for manual execution)
func (jr *JobRunner) RunAllJobs() {
	jr.RentDueSweep()
	jr.CounterCleanup()
}
