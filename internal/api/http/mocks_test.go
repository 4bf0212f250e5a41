package http

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"rental-mngt-admin/internal/domain"
	"rental-mngt-admin/internal/gateway"
	"rental-mngt-admin/internal/service"
	"rental-mngt-admin/internal/utils"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) ListMachines(ctx context.Context, token string, withImages bool) ([]domain.Machine, error) {
	args := m.Called(ctx, token, withImages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Machine), args.Error(1)
}

func (m *MockSource) ListRentals(ctx context.Context, token string) ([]domain.RentalWithMachine, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalWithMachine), args.Error(1)
}

func (m *MockSource) KnownEmails(ctx context.Context, token string) ([]string, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSource) Config(ctx context.Context, token string) ([]domain.ConfigElement, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ConfigElement), args.Error(1)
}

type MockMachineService struct {
	mock.Mock
}

func (m *MockMachineService) Get(ctx context.Context, token, id string) (*service.EditView[domain.Machine], error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EditView[domain.Machine]), args.Error(1)
}

func (m *MockMachineService) Enter(ctx context.Context, token, id string) (*service.EditView[domain.Machine], error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EditView[domain.Machine]), args.Error(1)
}

func (m *MockMachineService) Set(ctx context.Context, token, id string, fields map[string]any) (*service.EditView[domain.Machine], error) {
	args := m.Called(ctx, token, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EditView[domain.Machine]), args.Error(1)
}

func (m *MockMachineService) Exit(ctx context.Context, token, id string) (*service.MachineExitResult, error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MachineExitResult), args.Error(1)
}

func (m *MockMachineService) Create(ctx context.Context, token string, machine domain.NewMachine, image *gateway.File) (*domain.Machine, error) {
	args := m.Called(ctx, token, machine, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Machine), args.Error(1)
}

func (m *MockMachineService) UpdateImage(ctx context.Context, token, id string, image gateway.File) (string, error) {
	args := m.Called(ctx, token, id, image)
	return args.String(0), args.Error(1)
}

func (m *MockMachineService) Delete(ctx context.Context, token, id string) error {
	args := m.Called(ctx, token, id)
	return args.Error(0)
}

func (m *MockMachineService) RecordMaintenance(ctx context.Context, token, id string, performedAt *time.Time, notes string) (*service.EditView[domain.Machine], error) {
	args := m.Called(ctx, token, id, performedAt, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EditView[domain.Machine]), args.Error(1)
}

func (m *MockMachineService) AvailableParts(ctx context.Context, token string) ([]string, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockRentalService struct {
	mock.Mock
}

func (m *MockRentalService) Create(ctx context.Context, token, machineID string, rental domain.NewRental) (*domain.Rental, error) {
	args := m.Called(ctx, token, machineID, rental)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalService) Get(ctx context.Context, token, id string) (*service.EditView[domain.RentalWithMachine], error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EditView[domain.RentalWithMachine]), args.Error(1)
}

func (m *MockRentalService) Enter(ctx context.Context, token, id string) (*service.EditView[domain.RentalWithMachine], error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EditView[domain.RentalWithMachine]), args.Error(1)
}

func (m *MockRentalService) Set(ctx context.Context, token, id string, fields map[string]any) (*service.EditView[domain.RentalWithMachine], error) {
	args := m.Called(ctx, token, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EditView[domain.RentalWithMachine]), args.Error(1)
}

func (m *MockRentalService) Exit(ctx context.Context, token, id string) (*service.RentalExitResult, error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RentalExitResult), args.Error(1)
}

func (m *MockRentalService) TogglePaid(ctx context.Context, token, id string) (*service.EditView[domain.RentalWithMachine], error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EditView[domain.RentalWithMachine]), args.Error(1)
}

func (m *MockRentalService) Delete(ctx context.Context, token, id string) error {
	args := m.Called(ctx, token, id)
	return args.Error(0)
}

func (m *MockRentalService) Quote(ctx context.Context, token, id string) (*utils.RentalCostBreakdown, error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*utils.RentalCostBreakdown), args.Error(1)
}

func (m *MockRentalService) Agreement(ctx context.Context, token, id string) (*service.AgreementLink, error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AgreementLink), args.Error(1)
}

type MockConfigService struct {
	mock.Mock
}

func (m *MockConfigService) List(ctx context.Context, token string) ([]domain.ConfigElement, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ConfigElement), args.Error(1)
}

func (m *MockConfigService) Add(ctx context.Context, token string, element domain.ConfigElement) error {
	args := m.Called(ctx, token, element)
	return args.Error(0)
}

func (m *MockConfigService) Update(ctx context.Context, token string, element domain.ConfigElement) error {
	args := m.Called(ctx, token, element)
	return args.Error(0)
}

func (m *MockConfigService) Delete(ctx context.Context, token, key string) error {
	args := m.Called(ctx, token, key)
	return args.Error(0)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) Notify(ctx context.Context, level domain.NotificationLevel, message string) {
	m.Called(ctx, level, message)
}

func (m *MockNotificationService) GetNotifications(ctx context.Context, unreadOnly bool, page, pageSize int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, unreadOnly, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Notification), int32(args.Int(1)), args.Error(2)
}

func (m *MockNotificationService) MarkAsRead(ctx context.Context, notificationID int64) error {
	args := m.Called(ctx, notificationID)
	return args.Error(0)
}

type MockChangeLogService struct {
	mock.Mock
}

func (m *MockChangeLogService) Record(ctx context.Context, entity domain.EntityType, entityID string, changes utils.ChangeSet, submitErr error) {
	m.Called(ctx, entity, entityID, changes, submitErr)
}

func (m *MockChangeLogService) List(ctx context.Context, entity domain.EntityType, entityID string, page, pageSize int32) ([]domain.ChangeEvent, int32, error) {
	args := m.Called(ctx, entity, entityID, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.ChangeEvent), int32(args.Int(1)), args.Error(2)
}

func (m *MockChangeLogService) Purge(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return int64(args.Int(0)), args.Error(1)
}
