package jobs

import (
	"time"

	"rental-mngt-admin/internal/logger"
)

// PurgeChangeLog deletes change events older than the retention period
func (jr *JobRunner) PurgeChangeLog() {
	jr.runWithRecovery("PurgeChangeLog", func() {
		ctx, cancel := jr.jobContext()
		defer cancel()

		retention := time.Duration(jr.config.Reminders.ChangeLogRetentionDays) * 24 * time.Hour
		deleted, err := jr.services.ChangeLog.Purge(ctx, retention)
		if err != nil {
			logger.Error("Failed to purge change log", "error", err)
			return
		}
		logger.Info("Purged change log", "deleted", deleted, "retention_days", jr.config.Reminders.ChangeLogRetentionDays)
	})
}
