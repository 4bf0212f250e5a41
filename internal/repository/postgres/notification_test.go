package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-mngt-admin/internal/domain"
	"rental-mngt-admin/internal/repository/postgres"
)

func TestNotificationRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewNotificationRepository(db)
	n := &domain.Notification{Recipient: "owner@example.com", Level: domain.NotificationError, Message: "Failed to fetch rentals"}

	mock.ExpectQuery("INSERT INTO notifications").
		WithArgs("owner@example.com", domain.NotificationError, "Failed to fetch rentals", false, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	require.NoError(t, repo.Create(context.Background(), n))
	assert.Equal(t, int64(5), n.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewNotificationRepository(db)
	created := time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM notifications").
		WithArgs("owner@example.com", true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT id, recipient, level, message, is_read, created_on").
		WithArgs("owner@example.com", true, int32(10), int32(0)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "recipient", "level", "message", "is_read", "created_on"}).
			AddRow(1, "owner@example.com", "SUCCESS", "Rental updated", false, created))

	notes, count, err := repo.List(context.Background(), "owner@example.com", true, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(1), count)
	require.Len(t, notes, 1)
	assert.Equal(t, domain.NotificationSuccess, notes[0].Level)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_MarkAsRead(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewNotificationRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE notifications SET is_read = TRUE").
			WithArgs(int64(1), "owner@example.com").
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.MarkAsRead(ctx, 1, "owner@example.com"))
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectExec("UPDATE notifications SET is_read = TRUE").
			WithArgs(int64(2), "other@example.com").
			WillReturnResult(sqlmock.NewResult(0, 0))
		err := repo.MarkAsRead(ctx, 2, "other@example.com")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
