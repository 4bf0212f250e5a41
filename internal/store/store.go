package store

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"rental-mngt-admin/internal/domain"
)

// Source is the part of the rental-mngt API the store reads from.
type Source interface {
	ListMachines(ctx context.Context, token string, withImages bool) ([]domain.Machine, error)
	ListRentals(ctx context.Context, token string) ([]domain.RentalWithMachine, error)
	KnownEmails(ctx context.Context, token string) ([]string, error)
	Config(ctx context.Context, token string) ([]domain.ConfigElement, error)
}

const (
	CollectionMachines = "machines"
	CollectionRentals  = "rentals"
	CollectionEmails   = "emails"
	CollectionConfig   = "config"
)

// Store holds the data shared by every page of the back office.
type Store struct {
	Machines *Collection[domain.Machine]
	Rentals  *Collection[domain.RentalWithMachine]
	Emails   *Collection[string]
	Config   *Collection[domain.ConfigElement]
}

// New builds a store. snapshots may be nil.
func New(source Source, notifier Notifier, snapshots Snapshots) *Store {
	return &Store{
		Machines: newCollection[domain.Machine](CollectionMachines, "Failed to fetch rented machines",
			func(ctx context.Context, token string) ([]domain.Machine, error) {
				return source.ListMachines(ctx, token, true)
			}, notifier, snapshots),
		Rentals: newCollection[domain.RentalWithMachine](CollectionRentals, "Failed to fetch rentals",
			source.ListRentals, notifier, snapshots),
		Emails: newCollection[string](CollectionEmails, "Failed to fetch known e-mails",
			source.KnownEmails, notifier, snapshots),
		Config: newCollection[domain.ConfigElement](CollectionConfig, "Failed to fetch configuration",
			source.Config, notifier, snapshots),
	}
}

type refresher interface {
	Name() string
	Len() int
	Refresh(ctx context.Context, token string) error
	seed(ctx context.Context)
	Clear()
	Status() Status
}

func (s *Store) collections() []refresher {
	return []refresher{s.Machines, s.Rentals, s.Emails, s.Config}
}

// Initialize fetches every collection that is still empty, concurrently.
// Empty collections are first seeded from their snapshot, if any.
func (s *Store) Initialize(ctx context.Context, token string) error {
	var g errgroup.Group
	for _, c := range s.collections() {
		if c.Len() > 0 {
			continue
		}
		c := c
		c.seed(ctx)
		g.Go(func() error {
			return c.Refresh(ctx, token)
		})
	}
	return g.Wait()
}

// RefreshByName refreshes a single collection. It reports false for unknown names.
func (s *Store) RefreshByName(ctx context.Context, name, token string) (bool, error) {
	for _, c := range s.collections() {
		if c.Name() == name {
			return true, c.Refresh(ctx, token)
		}
	}
	return false, nil
}

// Clear empties every collection, e.g. on logout.
func (s *Store) Clear() {
	for _, c := range s.collections() {
		c.Clear()
	}
}

// Statuses returns the loading and error flags of every collection.
func (s *Store) Statuses() map[string]Status {
	out := make(map[string]Status, 4)
	for _, c := range s.collections() {
		out[c.Name()] = c.Status()
	}
	return out
}

// ConfigValue returns the value stored under key.
func (s *Store) ConfigValue(key string) (string, bool) {
	for _, element := range s.Config.List() {
		if element.Key == key {
			return element.Value, true
		}
	}
	return "", false
}

// PriceShipping returns the shipping surcharge, zero when it is absent or not a number.
func (s *Store) PriceShipping() decimal.Decimal {
	value, ok := s.ConfigValue(domain.ConfigKeyShippingPrice)
	if !ok {
		return decimal.Zero
	}
	fee, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero
	}
	return fee
}

func (s *Store) MachineByID(id string) (domain.Machine, bool) {
	for _, machine := range s.Machines.List() {
		if machine.ID == id {
			return machine, true
		}
	}
	return domain.Machine{}, false
}

// RentalsForMachine returns the cached rentals booking the given machine.
func (s *Store) RentalsForMachine(machineID string) []domain.RentalWithMachine {
	var out []domain.RentalWithMachine
	for _, rental := range s.Rentals.List() {
		if rental.MachineRentedID == machineID {
			out = append(out, rental)
		}
	}
	return out
}
