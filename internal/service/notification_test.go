package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rental-mngt-admin/internal/domain"
	"rental-mngt-admin/internal/security"
)

type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepo) List(ctx context.Context, recipient string, unreadOnly bool, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, recipient, unreadOnly, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Notification), int32(args.Int(1)), args.Error(2)
}

func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id int64, recipient string) error {
	args := m.Called(ctx, id, recipient)
	return args.Error(0)
}

func TestNotify_StoresForCaller(t *testing.T) {
	repo := new(MockNotificationRepo)
	svc := NewNotificationService(repo)
	ctx := security.WithIdentity(context.Background(), "alice@example.com")

	repo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.Recipient == "alice@example.com" && n.Level == domain.NotificationSuccess && n.Message == "Rental updated"
	})).Return(nil)

	svc.Notify(ctx, domain.NotificationSuccess, "Rental updated")
	repo.AssertExpectations(t)
}

func TestNotify_StorageFailureIsSwallowed(t *testing.T) {
	repo := new(MockNotificationRepo)
	svc := NewNotificationService(repo)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	assert.NotPanics(t, func() {
		svc.Notify(context.Background(), domain.NotificationError, "Failed to fetch rentals")
	})
	repo.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.Recipient == security.SystemIdentity
	}))
}

func TestGetNotifications_Paging(t *testing.T) {
	repo := new(MockNotificationRepo)
	svc := NewNotificationService(repo)
	ctx := security.WithIdentity(context.Background(), "alice@example.com")

	repo.On("List", ctx, "alice@example.com", true, int32(10), int32(20)).
		Return([]domain.Notification{{ID: 1}}, 21, nil)
	repo.On("List", ctx, "alice@example.com", false, int32(20), int32(0)).
		Return([]domain.Notification{}, 0, nil)

	notes, count, err := svc.GetNotifications(ctx, true, 3, 10)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
	assert.Equal(t, int32(21), count)

	_, _, err = svc.GetNotifications(ctx, false, 0, 500)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestMarkAsRead(t *testing.T) {
	repo := new(MockNotificationRepo)
	svc := NewNotificationService(repo)
	ctx := security.WithIdentity(context.Background(), "alice@example.com")
	repo.On("MarkAsRead", ctx, int64(7), "alice@example.com").Return(domain.ErrNotFound)

	assert.ErrorIs(t, svc.MarkAsRead(ctx, 7), domain.ErrNotFound)
}
