package repository

import (
	"context"
	"time"

	"rental-mngt-admin/internal/domain"
)

type ChangeEventRepository interface {
	Create(ctx context.Context, event *domain.ChangeEvent) error
	// List filters by entity and entity id when they are not empty, newest first.
	List(ctx context.Context, entity domain.EntityType, entityID string, limit, offset int32) ([]domain.ChangeEvent, int32, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context, recipient string, unreadOnly bool, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id int64, recipient string) error
}

// SnapshotRepository keeps serialized cache collections between restarts.
type SnapshotRepository interface {
	Load(ctx context.Context, name string, dest any) (bool, error)
	Save(ctx context.Context, name string, value any) error
}
