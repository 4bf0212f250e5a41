package service

import (
	"context"
	"encoding/json"
	"time"

	"rental-mngt-admin/internal/domain"
	"rental-mngt-admin/internal/logger"
	"rental-mngt-admin/internal/repository"
	"rental-mngt-admin/internal/security"
	"rental-mngt-admin/internal/utils"
)

type changeLogService struct {
	repo repository.ChangeEventRepository
	now  func() time.Time
}

func NewChangeLogService(repo repository.ChangeEventRepository) ChangeLogService {
	return &changeLogService{repo: repo, now: time.Now}
}

// Record stores the outcome of one exit from edit mode. An empty change set
// is recorded as skipped.
func (s *changeLogService) Record(ctx context.Context, entity domain.EntityType, entityID string, changes utils.ChangeSet, submitErr error) {
	event := &domain.ChangeEvent{
		Entity:      entity,
		EntityID:    entityID,
		Fields:      changes.Fields(),
		Outcome:     domain.ChangeOutcomeSubmitted,
		SubmittedBy: security.IdentityFromContext(ctx),
		SubmittedAt: s.now().UTC(),
	}
	switch {
	case changes.Empty():
		event.Outcome = domain.ChangeOutcomeSkipped
	case submitErr != nil:
		event.Outcome = domain.ChangeOutcomeFailed
		event.Error = submitErr.Error()
	}
	if !changes.Empty() {
		payload, err := json.Marshal(changes)
		if err != nil {
			logger.WarnContext(ctx, "Failed to encode change set", "entity", entity, "entityID", entityID, "error", err)
		} else {
			event.Payload = payload
		}
	}

	if err := s.repo.Create(ctx, event); err != nil {
		logger.ErrorContext(ctx, "Failed to record change event", "entity", entity, "entityID", entityID, "error", err)
	}
}

func (s *changeLogService) List(ctx context.Context, entity domain.EntityType, entityID string, page, pageSize int32) ([]domain.ChangeEvent, int32, error) {
	if entityID != "" {
		if err := domain.CheckID(entityID); err != nil {
			return nil, 0, err
		}
	}
	page, pageSize = normalizePage(page, pageSize)
	return s.repo.List(ctx, entity, entityID, pageSize, (page-1)*pageSize)
}

func (s *changeLogService) Purge(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := s.now().Add(-olderThan).UTC()
	deleted, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	logger.InfoContext(ctx, "Change log purged", "cutoff", cutoff, "deleted", deleted)
	return deleted, nil
}
