package jobs

import (
	"time"

	"rental-mngt-admin/internal/domain"
	"rental-mngt-admin/internal/logger"
)

// SendUnpaidReminders e-mails a digest of the rentals returned but not paid.
func (jr *JobRunner) SendUnpaidReminders() {
	jr.runWithRecovery("SendUnpaidReminders", func() {
		ctx, cancel := jr.jobContext()
		defer cancel()

		if err := jr.store.Rentals.Refresh(ctx, jr.serviceToken()); err != nil {
			logger.Error("Failed to fetch rentals", "error", err)
			return
		}

		overdue := unpaidRentals(jr.store.Rentals.List(), jr.now().UTC())
		if len(overdue) == 0 {
			logger.Info("No unpaid rentals")
			return
		}

		for _, r := range overdue {
			logger.Debug("Unpaid rental",
				"rental_id", r.ID,
				"machine", r.MachineRented.Name,
				"client_email", r.ClientEmail,
				"return_date", r.ReturnDate.Format(time.DateOnly))
		}

		if err := jr.services.Email.SendUnpaidRentalsDigest(ctx, jr.config.Reminders.Recipients, overdue); err != nil {
			logger.Error("Failed to send unpaid rentals digest", "error", err, "rentals", len(overdue))
			return
		}
		logger.Info("Sent unpaid rentals digest", "rentals", len(overdue))
	})
}

func unpaidRentals(rentals []domain.RentalWithMachine, on time.Time) []domain.RentalWithMachine {
	var out []domain.RentalWithMachine
	for _, r := range rentals {
		if r.Overdue(on) {
			out = append(out, r)
		}
	}
	return out
}
