package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The rental-mngt API exchanges prices as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

type MaintenanceType string

const (
	MaintenanceByDay      MaintenanceType = "BY_DAY"
	MaintenanceByNbRental MaintenanceType = "BY_NB_RENTAL"
)

func (t MaintenanceType) Valid() bool {
	return t == MaintenanceByDay || t == MaintenanceByNbRental
}

// Fields computed by the backend; never part of a client update.
const (
	FieldLastMaintenanceDate = "last_maintenance_date"
	FieldNextMaintenance     = "next_maintenance"
	FieldMachineRented       = "machineRented"
)

type MaintenanceHistory struct {
	ID          string    `json:"id,omitempty"`
	PerformedAt time.Time `json:"performedAt"`
	Notes       string    `json:"notes"`
}

type MachinePart struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Machine is a piece of equipment owned by the company and available for rental.
type Machine struct {
	ID                        string               `json:"id"`
	Name                      string               `json:"name"`
	MaintenanceType           MaintenanceType      `json:"maintenance_type"`
	NbDayBeforeMaintenance    *int                 `json:"nb_day_before_maintenance"`
	NbRentalBeforeMaintenance *int                 `json:"nb_rental_before_maintenance"`
	LastMaintenanceDate       *time.Time           `json:"last_maintenance_date"`
	NextMaintenance           *time.Time           `json:"next_maintenance"`
	PricePerDay               decimal.Decimal      `json:"price_per_day"`
	Guests                    []string             `json:"guests"`
	Parts                     []MachinePart        `json:"parts"`
	MaintenanceHistories      []MaintenanceHistory `json:"maintenanceHistories"`
	MachineRentals            []Rental             `json:"machineRentals"`
	ImageURL                  string               `json:"imageUrl"`
}

// MachineSummary is the machine as listed in the machine grid, without its rentals.
type MachineSummary struct {
	ID                        string          `json:"id"`
	Name                      string          `json:"name"`
	MaintenanceType           MaintenanceType `json:"maintenance_type"`
	NbDayBeforeMaintenance    *int            `json:"nb_day_before_maintenance"`
	NbRentalBeforeMaintenance *int            `json:"nb_rental_before_maintenance"`
	LastMaintenanceDate       *time.Time      `json:"last_maintenance_date"`
	NextMaintenance           *time.Time      `json:"next_maintenance"`
	PricePerDay               decimal.Decimal `json:"price_per_day"`
	Guests                    []string        `json:"guests"`
	ImageURL                  string          `json:"imageUrl"`
}

// MaintenanceDue reports whether the next maintenance falls on or before the given day.
func (m MachineSummary) MaintenanceDue(on time.Time) bool {
	if m.NextMaintenance == nil {
		return false
	}
	return !m.NextMaintenance.After(on)
}

// SetMaintenanceType switches the policy and clears the threshold of the other policy.
func (m *Machine) SetMaintenanceType(t MaintenanceType) {
	m.MaintenanceType = t
	switch t {
	case MaintenanceByDay:
		m.NbRentalBeforeMaintenance = nil
	case MaintenanceByNbRental:
		m.NbDayBeforeMaintenance = nil
	}
}

// NewMachine is the payload used to register a machine.
type NewMachine struct {
	Name                      string          `json:"name"`
	MaintenanceType           MaintenanceType `json:"maintenance_type"`
	NbDayBeforeMaintenance    *int            `json:"nb_day_before_maintenance"`
	NbRentalBeforeMaintenance *int            `json:"nb_rental_before_maintenance"`
	LastMaintenanceDate       *time.Time      `json:"last_maintenance_date"`
	PricePerDay               decimal.Decimal `json:"price_per_day"`
	Guests                    []string        `json:"guests"`
}

type EventUpdateType string

const (
	EventUpdateCreate EventUpdateType = "create"
	EventUpdateUpdate EventUpdateType = "update"
	EventUpdateDelete EventUpdateType = "delete"
	EventUpdateNone   EventUpdateType = "none"
)

// MachineUpdateResult is the backend answer to a machine update: the updated
// fields plus what happened to the maintenance calendar event.
type MachineUpdateResult struct {
	Machine
	EventUpdateType EventUpdateType `json:"eventUpdateType"`
}

// MergeUpdate overlays the machine returned by an update on m. Collections and
// the image URL the backend omits from its answer are kept from m.
func (m Machine) MergeUpdate(updated Machine) Machine {
	merged := updated
	if merged.ID == "" {
		merged.ID = m.ID
	}
	if merged.ImageURL == "" {
		merged.ImageURL = m.ImageURL
	}
	if merged.Parts == nil {
		merged.Parts = m.Parts
	}
	if merged.MaintenanceHistories == nil {
		merged.MaintenanceHistories = m.MaintenanceHistories
	}
	if merged.MachineRentals == nil {
		merged.MachineRentals = m.MachineRentals
	}
	if merged.Guests == nil {
		merged.Guests = m.Guests
	}
	return merged
}
