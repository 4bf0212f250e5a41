package utils

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-mngt-admin/internal/domain"
)

func TestIsDifferent(t *testing.T) {
	tests := []struct {
		name      string
		a         any
		b         any
		different bool
	}{
		{"Equal strings", "a", "a", false},
		{"Different strings", "a", "b", true},
		{"Equal numbers", json.Number("3"), json.Number("3.0"), false},
		{"Different numbers", json.Number("3"), json.Number("4"), true},
		{"Number vs string", json.Number("3"), "3", true},
		{"Bools", true, false, true},
		{"Null vs null", nil, nil, false},
		{"Null vs record", nil, map[string]any{}, true},
		{"Null vs array", []any{}, nil, true},
		{"Missing vs null", missing{}, nil, true},
		{"Equal arrays", []any{"a", "b"}, []any{"a", "b"}, false},
		{"Arrays are order sensitive", []any{"a", "b"}, []any{"b", "a"}, true},
		{"Arrays of different length", []any{"a"}, []any{"a", "b"}, true},
		{"Equal records", map[string]any{"x": "1"}, map[string]any{"x": "1"}, false},
		{"Records with a different value", map[string]any{"x": "1"}, map[string]any{"x": "2"}, true},
		{"Records with different key sets", map[string]any{"x": "1"}, map[string]any{"y": "1"}, true},
		{"Records with different sizes", map[string]any{"x": "1"}, map[string]any{"x": "1", "y": "2"}, true},
		{"Nested records", map[string]any{"x": []any{map[string]any{"y": true}}}, map[string]any{"x": []any{map[string]any{"y": false}}}, true},
		{"Array vs record of same class", []any{}, map[string]any{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.different, IsDifferent(tt.a, tt.b))
			assert.Equal(t, tt.different, IsDifferent(tt.b, tt.a))
		})
	}
}

func newMachine() domain.Machine {
	days := 30
	last := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	next := time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC)
	return domain.Machine{
		ID:                     "m1",
		Name:                   "Mini excavator",
		MaintenanceType:        domain.MaintenanceByDay,
		NbDayBeforeMaintenance: &days,
		LastMaintenanceDate:    &last,
		NextMaintenance:        &next,
		PricePerDay:            decimal.NewFromInt(120),
		Guests:                 []string{"ops@example.com", "yard@example.com"},
		Parts:                  []domain.MachinePart{{Name: "Bucket", Quantity: 1}},
	}
}

func TestDiff(t *testing.T) {
	t.Run("Identical records give an empty change set", func(t *testing.T) {
		changes, err := Diff(newMachine(), newMachine())
		require.NoError(t, err)
		assert.True(t, changes.Empty())
	})

	t.Run("One scalar field", func(t *testing.T) {
		current := newMachine()
		current.Name = "Mini excavator 2t"

		changes, err := Diff(current, newMachine())
		require.NoError(t, err)
		assert.Equal(t, []string{"name"}, changes.Fields())
		assert.Equal(t, "Mini excavator 2t", changes["name"])
	})

	t.Run("Array element change sends the whole array", func(t *testing.T) {
		current := newMachine()
		current.Guests = []string{"ops@example.com", "depot@example.com"}

		changes, err := Diff(current, newMachine())
		require.NoError(t, err)
		assert.Equal(t, []string{"guests"}, changes.Fields())
		assert.Equal(t, []any{"ops@example.com", "depot@example.com"}, changes["guests"])
	})

	t.Run("Excluded keys never appear", func(t *testing.T) {
		current := newMachine()
		later := current.NextMaintenance.AddDate(0, 1, 0)
		current.NextMaintenance = &later
		current.LastMaintenanceDate = nil
		current.Name = "Renamed"

		changes, err := Diff(current, newMachine(), domain.FieldLastMaintenanceDate, domain.FieldNextMaintenance)
		require.NoError(t, err)
		assert.Equal(t, []string{"name"}, changes.Fields())
	})

	t.Run("Nested record change", func(t *testing.T) {
		current := newMachine()
		current.Parts[0].Quantity = 2

		changes, err := Diff(current, newMachine())
		require.NoError(t, err)
		assert.Equal(t, []string{"parts"}, changes.Fields())
	})

	t.Run("Maintenance type switch clears the other threshold", func(t *testing.T) {
		current := newMachine()
		rentals := 5
		current.SetMaintenanceType(domain.MaintenanceByNbRental)
		current.NbRentalBeforeMaintenance = &rentals

		changes, err := Diff(current, newMachine())
		require.NoError(t, err)
		assert.Equal(t, []string{"maintenance_type", "nb_day_before_maintenance", "nb_rental_before_maintenance"}, changes.Fields())
		assert.Nil(t, changes["nb_day_before_maintenance"])
	})

	t.Run("Price change compares numerically", func(t *testing.T) {
		current := newMachine()
		current.PricePerDay = decimal.RequireFromString("120.00")

		changes, err := Diff(current, newMachine())
		require.NoError(t, err)
		assert.True(t, changes.Empty())
	})

	t.Run("Change set serializes as a partial update", func(t *testing.T) {
		current := newMachine()
		current.PricePerDay = decimal.NewFromInt(150)

		changes, err := Diff(current, newMachine())
		require.NoError(t, err)
		raw, err := json.Marshal(changes)
		require.NoError(t, err)
		assert.JSONEq(t, `{"price_per_day":150}`, string(raw))
	})

	t.Run("Clearing a list sends an empty array", func(t *testing.T) {
		current := newMachine()
		current.Parts = []domain.MachinePart{}

		changes, err := Diff(current, newMachine())
		require.NoError(t, err)
		assert.Equal(t, ChangeSet{"parts": []any{}}, changes)
	})

	t.Run("Clearing the image sends an empty string", func(t *testing.T) {
		initial := newMachine()
		initial.ImageURL = "http://localhost:8080/files/m1.png"
		current := initial
		current.ImageURL = ""

		changes, err := Diff(current, initial)
		require.NoError(t, err)
		assert.Equal(t, ChangeSet{"imageUrl": ""}, changes)
	})

	t.Run("Zero values are changes", func(t *testing.T) {
		current := newMachine()
		current.Name = ""
		current.PricePerDay = decimal.Zero
		current.Guests = []string{}
		current.NbDayBeforeMaintenance = nil

		changes, err := Diff(current, newMachine())
		require.NoError(t, err)
		assert.Equal(t, []string{"guests", "name", "nb_day_before_maintenance", "price_per_day"}, changes.Fields())
		assert.Equal(t, []any{}, changes["guests"])
		assert.Equal(t, "", changes["name"])
		assert.Equal(t, json.Number("0"), changes["price_per_day"])
		assert.Nil(t, changes["nb_day_before_maintenance"])
	})

	t.Run("Non-record values are rejected", func(t *testing.T) {
		_, err := Diff([]string{"a"}, []string{"b"})
		assert.Error(t, err)
	})
}

func TestDiff_Rental(t *testing.T) {
	base := domain.RentalWithMachine{
		Rental: domain.Rental{
			ID:          "r1",
			RentalDate:  day("2024-01-01"),
			ReturnDate:  day("2024-01-03"),
			ClientEmail: "client@example.com",
			Guests:      []string{},
		},
		MachineRented: domain.MachineSummary{ID: "m1", Name: "Excavator"},
	}

	current := base
	current.ReturnDate = day("2024-01-05")
	current.MachineRented.Name = "Other"

	changes, err := Diff(current, base, domain.FieldMachineRented)
	require.NoError(t, err)
	assert.Equal(t, []string{"returnDate"}, changes.Fields())
}

func TestDiff_RentalZeroValues(t *testing.T) {
	base := domain.RentalWithMachine{
		Rental: domain.Rental{
			ID:          "r1",
			RentalDate:  day("2024-01-01"),
			ReturnDate:  day("2024-01-03"),
			ClientEmail: "client@example.com",
			ClientPhone: "0601020304",
			Paid:        true,
			Deposit:     decimal.NewFromInt(500),
			Guests:      []string{"ops@example.com"},
		},
		MachineRented: domain.MachineSummary{ID: "m1", Name: "Excavator"},
	}

	current := base
	current.ClientPhone = ""
	current.Paid = false
	current.Deposit = decimal.Zero
	current.Guests = []string{}
	current.ReturnDate = nil

	changes, err := Diff(current, base, domain.FieldMachineRented)
	require.NoError(t, err)
	assert.Equal(t, ChangeSet{
		"clientPhone": "",
		"paid":        false,
		"deposit":     json.Number("0"),
		"guests":      []any{},
		"returnDate":  nil,
	}, changes)
}

func TestDiffRecords_DroppedKeyIsCleared(t *testing.T) {
	initial := map[string]any{"name": "a", "parts": []any{"x"}, "stamp": "s1"}
	current := map[string]any{"name": "a"}

	changes := DiffRecords(current, initial, "stamp")
	assert.Equal(t, ChangeSet{"parts": nil}, changes)
}

func TestIsDifferent_ArraysNeverMatchScalars(t *testing.T) {
	assert.True(t, IsDifferent(nil, []any{"null"}))
	assert.True(t, IsDifferent("", []any{}))
	assert.True(t, IsDifferent("a,b", []any{"a", "b"}))
}

func TestClone(t *testing.T) {
	original := newMachine()
	clone, err := Clone(original)
	require.NoError(t, err)

	clone.Guests[0] = "changed@example.com"
	assert.Equal(t, "ops@example.com", original.Guests[0])

	changes, err := Diff(original, newMachine())
	require.NoError(t, err)
	assert.True(t, changes.Empty())
}

func TestApply(t *testing.T) {
	m := newMachine()

	updated, err := Apply(m, map[string]any{
		"name":          "Mini-pelle 2",
		"price_per_day": json.Number("175.5"),
		"guests":        []any{"a@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Mini-pelle 2", updated.Name)
	assert.True(t, updated.PricePerDay.Equal(decimal.RequireFromString("175.5")))
	assert.Equal(t, []string{"a@example.com"}, updated.Guests)
	assert.Equal(t, m.ID, updated.ID)

	// The source value is untouched.
	assert.NotEqual(t, "Mini-pelle 2", m.Name)

	_, err = Apply(m, map[string]any{"colour": "yellow"})
	assert.Error(t, err)

	_, err = Apply(m, map[string]any{"name": 12})
	assert.Error(t, err)
}
