package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"rental-mngt-admin/internal/jobs"
	"rental-mngt-admin/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a new scheduler with the provided job runner
func NewScheduler(jobRunner *jobs.JobRunner) *Scheduler {
	// Create cron with UTC timezone and seconds precision
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	s.registerJobs()
	return s
}

// registerJobs registers all scheduled jobs with the cron scheduler.
// An invalid expression disables that job only.
func (s *Scheduler) registerJobs() {
	cfg := s.jobs.Config().Scheduler

	entries := []struct {
		name string
		cron string
		run  func()
	}{
		{"SendMaintenanceReminders", cfg.SendMaintenanceReminders, s.jobs.SendMaintenanceReminders},
		{"SendUnpaidReminders", cfg.SendUnpaidReminders, s.jobs.SendUnpaidReminders},
		{"PurgeChangeLog", cfg.PurgeChangeLog, s.jobs.PurgeChangeLog},
	}

	registered := 0
	for _, e := range entries {
		if _, err := s.cron.AddFunc(e.cron, e.run); err != nil {
			logger.Error("Failed to register job", "job", e.name, "schedule", e.cron, "error", err)
			continue
		}
		registered++
	}

	logger.Info("Cron jobs registered", "count", registered)
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop gracefully stops the cron scheduler, waiting for running jobs
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// IsRunning returns true if the scheduler has registered jobs
func (s *Scheduler) IsRunning() bool {
	return len(s.cron.Entries()) > 0
}

// NextRuns returns the next activation time of each registered job
func (s *Scheduler) NextRuns() []time.Time {
	entries := s.cron.Entries()
	next := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		next = append(next, e.Schedule.Next(time.Now()))
	}
	return next
}
