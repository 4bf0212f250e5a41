package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rental-mngt-admin/internal/domain"
	"rental-mngt-admin/internal/logger"
	"rental-mngt-admin/internal/repository"
)

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	logger.EnterMethod("notificationRepository.Create", "recipient", n.Recipient, "level", n.Level)

	if n.CreatedOn.IsZero() {
		n.CreatedOn = time.Now().UTC()
	}

	query := `INSERT INTO notifications (recipient, level, message, is_read, created_on)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	logger.DatabaseCall("INSERT", "notifications", "recipient", n.Recipient)

	err := r.db.QueryRowContext(ctx, query, n.Recipient, n.Level, n.Message, n.IsRead, n.CreatedOn).Scan(&n.ID)
	logger.DatabaseResult("INSERT", 1, err, "notificationID", n.ID)

	if err != nil {
		logger.ExitMethodWithError("notificationRepository.Create", err, "recipient", n.Recipient)
	} else {
		logger.ExitMethod("notificationRepository.Create", "notificationID", n.ID)
	}
	return err
}

func (r *notificationRepository) List(ctx context.Context, recipient string, unreadOnly bool, limit, offset int32) ([]domain.Notification, int32, error) {
	var count int32
	countQuery := `SELECT count(*) FROM notifications WHERE recipient = $1 AND (NOT $2 OR is_read = FALSE)`
	if err := r.db.QueryRowContext(ctx, countQuery, recipient, unreadOnly).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, recipient, level, message, is_read, created_on
	          FROM notifications WHERE recipient = $1 AND (NOT $2 OR is_read = FALSE)
	          ORDER BY created_on DESC, id DESC LIMIT $3 OFFSET $4`
	rows, err := r.db.QueryContext(ctx, query, recipient, unreadOnly, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var notes []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.Recipient, &n.Level, &n.Message, &n.IsRead, &n.CreatedOn); err != nil {
			return nil, 0, err
		}
		notes = append(notes, n)
	}
	return notes, count, rows.Err()
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id int64, recipient string) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND recipient = $2`
	result, err := r.db.ExecContext(ctx, query, id, recipient)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("notification %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
