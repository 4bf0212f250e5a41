package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rental is a single customer booking of a machine for a date range.
type Rental struct {
	ID              string          `json:"id"`
	MachineRentedID string          `json:"machineRentedId"`
	RentalDate      *time.Time      `json:"rentalDate"`
	ReturnDate      *time.Time      `json:"returnDate"`
	ClientFirstName string          `json:"clientFirstName"`
	ClientLastName  string          `json:"clientLastName"`
	ClientEmail     string          `json:"clientEmail"`
	ClientPhone     string          `json:"clientPhone"`
	ClientAddress   string          `json:"clientAddress"`
	ClientPostal    string          `json:"clientPostal"`
	ClientCity      string          `json:"clientCity"`
	Paid            bool            `json:"paid"`
	WithShipping    bool            `json:"with_shipping"`
	Deposit         decimal.Decimal `json:"deposit"`
	Guests          []string        `json:"guests"`
}

// RentalWithMachine is a rental together with the machine it books.
type RentalWithMachine struct {
	Rental
	MachineRented MachineSummary `json:"machineRented"`
}

// NewRental is the payload used to book a machine.
type NewRental struct {
	RentalDate      *time.Time      `json:"rentalDate"`
	ReturnDate      *time.Time      `json:"returnDate"`
	ClientFirstName string          `json:"clientFirstName"`
	ClientLastName  string          `json:"clientLastName"`
	ClientEmail     string          `json:"clientEmail"`
	ClientPhone     string          `json:"clientPhone"`
	ClientAddress   string          `json:"clientAddress"`
	ClientPostal    string          `json:"clientPostal"`
	ClientCity      string          `json:"clientCity"`
	WithShipping    bool            `json:"with_shipping"`
	Deposit         decimal.Decimal `json:"deposit"`
	Guests          []string        `json:"guests"`
}

// Overdue reports whether the rental was due back before the given day and is still unpaid.
func (r Rental) Overdue(on time.Time) bool {
	if r.Paid || r.ReturnDate == nil {
		return false
	}
	return r.ReturnDate.Before(on)
}

// ClientName returns the client's full name.
func (r Rental) ClientName() string {
	switch {
	case r.ClientFirstName == "":
		return r.ClientLastName
	case r.ClientLastName == "":
		return r.ClientFirstName
	}
	return r.ClientFirstName + " " + r.ClientLastName
}
