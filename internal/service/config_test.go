package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rental-mngt-admin/internal/domain"
	"rental-mngt-admin/internal/store"
)

func setupConfigService() (ConfigService, *MockAPI, *recordingNotifier, *store.Store) {
	api := new(MockAPI)
	notifier := &recordingNotifier{}
	st := store.New(api, notifier, nil)
	return NewConfigService(api, st, notifier), api, notifier, st
}

func TestConfigAdd_RefreshesCollection(t *testing.T) {
	svc, api, notifier, st := setupConfigService()
	ctx := context.Background()
	element := domain.ConfigElement{Key: domain.ConfigKeyShippingPrice, Value: "30"}
	api.On("AddConfig", mock.Anything, "tok", element).Return(nil)
	api.On("Config", mock.Anything, "tok").Return([]domain.ConfigElement{element}, nil)

	require.NoError(t, svc.Add(ctx, "tok", element))

	assert.Equal(t, []string{"SUCCESS: Prix livraison saved"}, notifier.all())
	assert.Equal(t, "30", st.PriceShipping().String())
}

func TestConfigMutations_Failure(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(api *MockAPI)
		call    func(svc ConfigService) error
		message string
	}{
		{
			name: "Add",
			setup: func(api *MockAPI) {
				api.On("AddConfig", mock.Anything, "tok", mock.Anything).Return(errors.New("boom"))
			},
			call: func(svc ConfigService) error {
				return svc.Add(context.Background(), "tok", domain.ConfigElement{Key: "TVA", Value: "20"})
			},
			message: "ERROR: Failed to add TVA",
		},
		{
			name: "Update",
			setup: func(api *MockAPI) {
				api.On("UpdateConfig", mock.Anything, "tok", mock.Anything).Return(errors.New("boom"))
			},
			call: func(svc ConfigService) error {
				return svc.Update(context.Background(), "tok", domain.ConfigElement{Key: "TVA", Value: "20"})
			},
			message: "ERROR: Failed to update TVA",
		},
		{
			name: "Delete",
			setup: func(api *MockAPI) {
				api.On("DeleteConfig", mock.Anything, "tok", "TVA").Return(errors.New("boom"))
			},
			call: func(svc ConfigService) error {
				return svc.Delete(context.Background(), "tok", "TVA")
			},
			message: "ERROR: Failed to delete TVA",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, api, notifier, _ := setupConfigService()
			tt.setup(api)

			require.Error(t, tt.call(svc))
			assert.Equal(t, []string{tt.message}, notifier.all())
			api.AssertNotCalled(t, "Config", mock.Anything, mock.Anything)
		})
	}
}

func TestConfigUpdateAndDelete(t *testing.T) {
	svc, api, notifier, _ := setupConfigService()
	ctx := context.Background()
	api.On("UpdateConfig", mock.Anything, "tok", domain.ConfigElement{Key: "TVA", Value: "5.5"}).Return(nil)
	api.On("DeleteConfig", mock.Anything, "tok", "TVA").Return(nil)
	api.On("Config", mock.Anything, "tok").Return([]domain.ConfigElement{}, nil)

	require.NoError(t, svc.Update(ctx, "tok", domain.ConfigElement{Key: "TVA", Value: "5.5"}))
	require.NoError(t, svc.Delete(ctx, "tok", "TVA"))
	assert.Equal(t, []string{"SUCCESS: TVA updated", "SUCCESS: TVA deleted"}, notifier.all())

	assert.ErrorIs(t, svc.Delete(ctx, "tok", " "), domain.ErrValidation)
	assert.ErrorIs(t, svc.Add(ctx, "tok", domain.ConfigElement{}), domain.ErrValidation)
}

func TestConfigList_FetchesOnce(t *testing.T) {
	svc, api, _, _ := setupConfigService()
	ctx := context.Background()
	api.On("Config", mock.Anything, "tok").Return([]domain.ConfigElement{{Key: "TVA", Value: "20"}}, nil).Once()

	for i := 0; i < 2; i++ {
		elements, err := svc.List(ctx, "tok")
		require.NoError(t, err)
		assert.Len(t, elements, 1)
	}
	api.AssertExpectations(t)
}
