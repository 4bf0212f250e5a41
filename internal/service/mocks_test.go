package service

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"rental-mngt-admin/internal/domain"
	"rental-mngt-admin/internal/gateway"
	"rental-mngt-admin/internal/utils"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) ListMachines(ctx context.Context, token string, withImages bool) ([]domain.Machine, error) {
	args := m.Called(ctx, token, withImages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Machine), args.Error(1)
}

func (m *MockAPI) GetMachine(ctx context.Context, token, id string) (*domain.Machine, error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Machine), args.Error(1)
}

func (m *MockAPI) UpdateMachine(ctx context.Context, token, id string, changes utils.ChangeSet) (*domain.MachineUpdateResult, error) {
	args := m.Called(ctx, token, id, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MachineUpdateResult), args.Error(1)
}

func (m *MockAPI) DeleteMachine(ctx context.Context, token, id string) error {
	args := m.Called(ctx, token, id)
	return args.Error(0)
}

func (m *MockAPI) CreateMachine(ctx context.Context, token string, machine domain.NewMachine, image *gateway.File) (*domain.Machine, error) {
	args := m.Called(ctx, token, machine, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Machine), args.Error(1)
}

func (m *MockAPI) UpdateMachineImage(ctx context.Context, token, id string, image gateway.File) (string, error) {
	args := m.Called(ctx, token, id, image)
	return args.String(0), args.Error(1)
}

func (m *MockAPI) AvailableParts(ctx context.Context, token string) ([]string, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAPI) CreateRental(ctx context.Context, token, machineID string, rental domain.NewRental) (*domain.Rental, error) {
	args := m.Called(ctx, token, machineID, rental)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockAPI) ListRentals(ctx context.Context, token string) ([]domain.RentalWithMachine, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalWithMachine), args.Error(1)
}

func (m *MockAPI) GetRental(ctx context.Context, token, id string) (*domain.RentalWithMachine, error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalWithMachine), args.Error(1)
}

func (m *MockAPI) UpdateRental(ctx context.Context, token, id string, changes utils.ChangeSet) (*domain.Rental, error) {
	args := m.Called(ctx, token, id, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockAPI) DeleteRental(ctx context.Context, token, id string) error {
	args := m.Called(ctx, token, id)
	return args.Error(0)
}

func (m *MockAPI) RentalAgreement(ctx context.Context, token, id string) (*gateway.Blob, error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Blob), args.Error(1)
}

func (m *MockAPI) KnownEmails(ctx context.Context, token string) ([]string, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAPI) Config(ctx context.Context, token string) ([]domain.ConfigElement, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ConfigElement), args.Error(1)
}

func (m *MockAPI) AddConfig(ctx context.Context, token string, element domain.ConfigElement) error {
	args := m.Called(ctx, token, element)
	return args.Error(0)
}

func (m *MockAPI) UpdateConfig(ctx context.Context, token string, element domain.ConfigElement) error {
	args := m.Called(ctx, token, element)
	return args.Error(0)
}

func (m *MockAPI) DeleteConfig(ctx context.Context, token, key string) error {
	args := m.Called(ctx, token, key)
	return args.Error(0)
}

func (m *MockAPI) GoogleAuthStatus(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockAPI) GoogleAuthURL(ctx context.Context, token, redirect string) (*gateway.GoogleAuthURL, error) {
	args := m.Called(ctx, token, redirect)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.GoogleAuthURL), args.Error(1)
}

// recordingNotifier keeps every message as "LEVEL: text".
type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(ctx context.Context, level domain.NotificationLevel, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, string(level)+": "+message)
}

func (n *recordingNotifier) GetNotifications(ctx context.Context, unreadOnly bool, page, pageSize int32) ([]domain.Notification, int32, error) {
	return nil, 0, nil
}

func (n *recordingNotifier) MarkAsRead(ctx context.Context, notificationID int64) error {
	return nil
}

func (n *recordingNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

type recordedChange struct {
	entity   domain.EntityType
	entityID string
	changes  utils.ChangeSet
	err      error
}

type recordingChangeLog struct {
	mu      sync.Mutex
	records []recordedChange
}

func (c *recordingChangeLog) Record(ctx context.Context, entity domain.EntityType, entityID string, changes utils.ChangeSet, submitErr error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, recordedChange{entity: entity, entityID: entityID, changes: changes, err: submitErr})
}

func (c *recordingChangeLog) List(ctx context.Context, entity domain.EntityType, entityID string, page, pageSize int32) ([]domain.ChangeEvent, int32, error) {
	return nil, 0, nil
}

func (c *recordingChangeLog) Purge(ctx context.Context, olderThan time.Duration) (int64, error) {
	return 0, nil
}

func intPtr(v int) *int {
	return &v
}

func datePtr(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}
