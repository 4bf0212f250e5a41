package jobs

import (
	"context"
	"time"

	"rental-mngt-admin/internal/config"
	"rental-mngt-admin/internal/logger"
	"rental-mngt-admin/internal/security"
	"rental-mngt-admin/internal/service"
	"rental-mngt-admin/internal/store"
)

// jobTimeout bounds a single job run, remote fetches included.
const jobTimeout = 5 * time.Minute

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	store    *store.Store
	services *Services
	config   *config.Config
	now      func() time.Time
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Email     service.EmailService
	ChangeLog service.ChangeLogService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(st *store.Store, services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		store:    st,
		services: services,
		config:   cfg,
		now:      time.Now,
	}
}

// Config returns the configuration the jobs were built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// jobContext is the context of one run. Jobs act as the system identity and
// authenticate against the remote API with the configured service token.
func (jr *JobRunner) jobContext() (context.Context, context.CancelFunc) {
	ctx := security.WithIdentity(context.Background(), security.SystemIdentity)
	return context.WithTimeout(ctx, jobTimeout)
}

func (jr *JobRunner) serviceToken() string {
	return jr.config.API.ServiceToken
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	start := time.Now()
	jobFunc()
	logger.Info("Job completed", "job", jobName, "duration_ms", time.Since(start).Milliseconds())
}

// RunAllNightlyJobs runs all nightly jobs (for manual execution)
func (jr *JobRunner) RunAllNightlyJobs() {
	jr.SendMaintenanceReminders()
	jr.SendUnpaidReminders()
	jr.PurgeChangeLog()
}
