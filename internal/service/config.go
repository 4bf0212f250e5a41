package service

import (
	"context"
	"fmt"
	"strings"

	"rental-mngt-admin/internal/domain"
	"rental-mngt-admin/internal/gateway"
	"rental-mngt-admin/internal/logger"
	"rental-mngt-admin/internal/store"
)

type configService struct {
	api      gateway.API
	store    *store.Store
	notifier NotificationService
}

func NewConfigService(api gateway.API, st *store.Store, notifier NotificationService) ConfigService {
	return &configService{api: api, store: st, notifier: notifier}
}

// List returns the cached settings, fetching them on first use.
func (s *configService) List(ctx context.Context, token string) ([]domain.ConfigElement, error) {
	if s.store.Config.Len() == 0 {
		if err := s.store.Config.Refresh(ctx, token); err != nil {
			return nil, err
		}
	}
	return s.store.Config.List(), nil
}

func (s *configService) Add(ctx context.Context, token string, element domain.ConfigElement) error {
	if err := validateConfigElement(element); err != nil {
		return err
	}
	if err := s.api.AddConfig(ctx, token, element); err != nil {
		s.notifier.Notify(ctx, domain.NotificationError, "Failed to add "+element.Key)
		return err
	}
	s.notifier.Notify(ctx, domain.NotificationSuccess, element.Key+" saved")
	s.refresh(ctx, token)
	return nil
}

func (s *configService) Update(ctx context.Context, token string, element domain.ConfigElement) error {
	if err := validateConfigElement(element); err != nil {
		return err
	}
	if err := s.api.UpdateConfig(ctx, token, element); err != nil {
		s.notifier.Notify(ctx, domain.NotificationError, "Failed to update "+element.Key)
		return err
	}
	s.notifier.Notify(ctx, domain.NotificationSuccess, element.Key+" updated")
	s.refresh(ctx, token)
	return nil
}

func (s *configService) Delete(ctx context.Context, token, key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: key is required", domain.ErrValidation)
	}
	if err := s.api.DeleteConfig(ctx, token, key); err != nil {
		s.notifier.Notify(ctx, domain.NotificationError, "Failed to delete "+key)
		return err
	}
	s.notifier.Notify(ctx, domain.NotificationSuccess, key+" deleted")
	s.refresh(ctx, token)
	return nil
}

func (s *configService) refresh(ctx context.Context, token string) {
	if err := s.store.Config.Refresh(ctx, token); err != nil {
		logger.WarnContext(ctx, "Configuration refresh failed", "error", err)
	}
}

func validateConfigElement(element domain.ConfigElement) error {
	if strings.TrimSpace(element.Key) == "" {
		return fmt.Errorf("%w: key is required", domain.ErrValidation)
	}
	return nil
}
