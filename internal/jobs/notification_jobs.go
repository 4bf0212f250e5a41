package jobs

import (
	"slices"
	"time"

	"rental-mngt-admin/internal/domain"
	"rental-mngt-admin/internal/logger"
)

// SendMaintenanceReminders e-mails the machines whose next maintenance falls
// within the configured lead time.
func (jr *JobRunner) SendMaintenanceReminders() {
	jr.runWithRecovery("SendMaintenanceReminders", func() {
		ctx, cancel := jr.jobContext()
		defer cancel()

		if err := jr.store.Machines.Refresh(ctx, jr.serviceToken()); err != nil {
			logger.Error("Failed to fetch machines", "error", err)
			return
		}

		horizon := jr.now().UTC().AddDate(0, 0, jr.config.Reminders.MaintenanceLeadDays)
		due := maintenanceDue(jr.store.Machines.List(), horizon)
		if len(due) == 0 {
			logger.Info("No maintenance due", "horizon", horizon.Format(time.DateOnly))
			return
		}

		if err := jr.services.Email.SendMaintenanceReminder(ctx, jr.config.Reminders.Recipients, due); err != nil {
			logger.Error("Failed to send maintenance reminder", "error", err, "machines", len(due))
			return
		}
		logger.Info("Sent maintenance reminder", "machines", len(due))
	})
}

// maintenanceDue keeps the machines scheduled for maintenance on or before
// horizon, soonest first.
func maintenanceDue(machines []domain.Machine, horizon time.Time) []domain.Machine {
	var due []domain.Machine
	for _, m := range machines {
		if m.NextMaintenance != nil && !m.NextMaintenance.After(horizon) {
			due = append(due, m)
		}
	}
	slices.SortStableFunc(due, func(a, b domain.Machine) int {
		return a.NextMaintenance.Compare(*b.NextMaintenance)
	})
	return due
}
