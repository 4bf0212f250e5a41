package service

import (
	"context"

	"rental-mngt-admin/internal/domain"
	"rental-mngt-admin/internal/logger"
	"rental-mngt-admin/internal/repository"
	"rental-mngt-admin/internal/security"
)

type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

// Notify stores a message for the caller. Failures are logged only: a lost
// toast never fails the operation that produced it.
func (s *notificationService) Notify(ctx context.Context, level domain.NotificationLevel, message string) {
	n := &domain.Notification{
		Recipient: security.IdentityFromContext(ctx),
		Level:     level,
		Message:   message,
	}
	logger.InfoContext(ctx, "Notification", "recipient", n.Recipient, "level", level, "message", message)
	if err := s.noteRepo.Create(ctx, n); err != nil {
		logger.ErrorContext(ctx, "Failed to store notification", "recipient", n.Recipient, "error", err)
	}
}

func (s *notificationService) GetNotifications(ctx context.Context, unreadOnly bool, page, pageSize int32) ([]domain.Notification, int32, error) {
	page, pageSize = normalizePage(page, pageSize)
	offset := (page - 1) * pageSize
	return s.noteRepo.List(ctx, security.IdentityFromContext(ctx), unreadOnly, pageSize, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, notificationID int64) error {
	return s.noteRepo.MarkAsRead(ctx, notificationID, security.IdentityFromContext(ctx))
}

func normalizePage(page, pageSize int32) (int32, int32) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
