package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rental-mngt-admin/internal/domain"
	"rental-mngt-admin/internal/security"
	"rental-mngt-admin/internal/utils"
)

type MockChangeEventRepo struct {
	mock.Mock
}

func (m *MockChangeEventRepo) Create(ctx context.Context, event *domain.ChangeEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockChangeEventRepo) List(ctx context.Context, entity domain.EntityType, entityID string, limit, offset int32) ([]domain.ChangeEvent, int32, error) {
	args := m.Called(ctx, entity, entityID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.ChangeEvent), int32(args.Int(1)), args.Error(2)
}

func (m *MockChangeEventRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return int64(args.Int(0)), args.Error(1)
}

func newTestChangeLog(repo *MockChangeEventRepo) *changeLogService {
	svc := NewChangeLogService(repo).(*changeLogService)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 3, 0, 0, 0, time.UTC) }
	return svc
}

func TestRecord_Outcomes(t *testing.T) {
	tests := []struct {
		name      string
		changes   utils.ChangeSet
		submitErr error
		outcome   domain.ChangeOutcome
		errText   string
		payload   bool
	}{
		{"Skipped", utils.ChangeSet{}, nil, domain.ChangeOutcomeSkipped, "", false},
		{"Submitted", utils.ChangeSet{"paid": true}, nil, domain.ChangeOutcomeSubmitted, "", true},
		{"Failed", utils.ChangeSet{"paid": true}, errors.New("Bad Gateway 502"), domain.ChangeOutcomeFailed, "Bad Gateway 502", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockChangeEventRepo)
			svc := newTestChangeLog(repo)
			ctx := security.WithIdentity(context.Background(), "alice@example.com")

			var saved *domain.ChangeEvent
			repo.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
				saved = args.Get(1).(*domain.ChangeEvent)
			}).Return(nil)

			svc.Record(ctx, domain.EntityRental, "r1", tt.changes, tt.submitErr)

			require.NotNil(t, saved)
			assert.Equal(t, tt.outcome, saved.Outcome)
			assert.Equal(t, tt.errText, saved.Error)
			assert.Equal(t, "alice@example.com", saved.SubmittedBy)
			assert.Equal(t, "r1", saved.EntityID)
			assert.Equal(t, time.Date(2024, 6, 1, 3, 0, 0, 0, time.UTC), saved.SubmittedAt)
			if tt.payload {
				assert.JSONEq(t, `{"paid":true}`, string(saved.Payload))
				assert.Equal(t, []string{"paid"}, saved.Fields)
			} else {
				assert.Empty(t, saved.Payload)
			}
		})
	}
}

func TestRecord_RepositoryFailureIsSwallowed(t *testing.T) {
	repo := new(MockChangeEventRepo)
	svc := newTestChangeLog(repo)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	assert.NotPanics(t, func() {
		svc.Record(context.Background(), domain.EntityMachine, "m1", utils.ChangeSet{"name": "x"}, nil)
	})
}

func TestPurge(t *testing.T) {
	repo := new(MockChangeEventRepo)
	svc := newTestChangeLog(repo)
	ctx := context.Background()
	repo.On("DeleteOlderThan", ctx, time.Date(2024, 5, 2, 3, 0, 0, 0, time.UTC)).Return(12, nil)

	deleted, err := svc.Purge(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(12), deleted)
}

func TestChangeLogList(t *testing.T) {
	repo := new(MockChangeEventRepo)
	svc := newTestChangeLog(repo)
	ctx := context.Background()
	repo.On("List", ctx, domain.EntityMachine, "m1", int32(20), int32(0)).
		Return([]domain.ChangeEvent{{ID: 1, Payload: json.RawMessage(`{}`)}}, 1, nil)

	events, count, err := svc.List(ctx, domain.EntityMachine, "m1", 1, 0)
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, int32(1), count)
}

func TestChangeLogList_RejectsBadEntityID(t *testing.T) {
	repo := new(MockChangeEventRepo)
	svc := newTestChangeLog(repo)

	_, _, err := svc.List(context.Background(), domain.EntityRental, "r1' OR '1'='1", 1, 20)

	assert.ErrorIs(t, err, domain.ErrValidation)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
