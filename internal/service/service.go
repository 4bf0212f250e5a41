package service

import (
	"context"
	"time"

	"rental-mngt-admin/internal/domain"
	"rental-mngt-admin/internal/gateway"
	"rental-mngt-admin/internal/utils"
)

type MachineService interface {
	// Get loads the machine and opens its edit session. Pending edits are kept.
	Get(ctx context.Context, token, id string) (*EditView[domain.Machine], error)
	Enter(ctx context.Context, token, id string) (*EditView[domain.Machine], error)
	Set(ctx context.Context, token, id string, fields map[string]any) (*EditView[domain.Machine], error)
	Exit(ctx context.Context, token, id string) (*MachineExitResult, error)

	Create(ctx context.Context, token string, machine domain.NewMachine, image *gateway.File) (*domain.Machine, error)
	UpdateImage(ctx context.Context, token, id string, image gateway.File) (string, error)
	Delete(ctx context.Context, token, id string) error
	RecordMaintenance(ctx context.Context, token, id string, performedAt *time.Time, notes string) (*EditView[domain.Machine], error)
	AvailableParts(ctx context.Context, token string) ([]string, error)
}

type MachineExitResult struct {
	View            EditView[domain.Machine] `json:"view"`
	Changes         utils.ChangeSet          `json:"changes"`
	Submitted       bool                     `json:"submitted"`
	EventUpdateType domain.EventUpdateType   `json:"event_update_type,omitempty"`
}

type RentalService interface {
	Create(ctx context.Context, token, machineID string, rental domain.NewRental) (*domain.Rental, error)
	Get(ctx context.Context, token, id string) (*EditView[domain.RentalWithMachine], error)
	Enter(ctx context.Context, token, id string) (*EditView[domain.RentalWithMachine], error)
	Set(ctx context.Context, token, id string, fields map[string]any) (*EditView[domain.RentalWithMachine], error)
	Exit(ctx context.Context, token, id string) (*RentalExitResult, error)
	TogglePaid(ctx context.Context, token, id string) (*EditView[domain.RentalWithMachine], error)
	Delete(ctx context.Context, token, id string) error
	Quote(ctx context.Context, token, id string) (*utils.RentalCostBreakdown, error)
	Agreement(ctx context.Context, token, id string) (*AgreementLink, error)
}

type RentalExitResult struct {
	View      EditView[domain.RentalWithMachine] `json:"view"`
	Changes   utils.ChangeSet                    `json:"changes"`
	Submitted bool                               `json:"submitted"`
}

type AgreementLink struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ConfigService interface {
	List(ctx context.Context, token string) ([]domain.ConfigElement, error)
	Add(ctx context.Context, token string, element domain.ConfigElement) error
	Update(ctx context.Context, token string, element domain.ConfigElement) error
	Delete(ctx context.Context, token, key string) error
}

type NotificationService interface {
	Notify(ctx context.Context, level domain.NotificationLevel, message string)
	GetNotifications(ctx context.Context, unreadOnly bool, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, notificationID int64) error
}

type ChangeLogService interface {
	Record(ctx context.Context, entity domain.EntityType, entityID string, changes utils.ChangeSet, submitErr error)
	List(ctx context.Context, entity domain.EntityType, entityID string, page, pageSize int32) ([]domain.ChangeEvent, int32, error)
	Purge(ctx context.Context, olderThan time.Duration) (int64, error)
}

type EmailService interface {
	SendMaintenanceReminder(ctx context.Context, to []string, machines []domain.Machine) error
	SendUnpaidRentalsDigest(ctx context.Context, to []string, rentals []domain.RentalWithMachine) error
}
