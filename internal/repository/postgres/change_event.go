package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"rental-mngt-admin/internal/domain"
	"rental-mngt-admin/internal/logger"
	"rental-mngt-admin/internal/repository"
)

type changeEventRepository struct {
	db *sql.DB
}

func NewChangeEventRepository(db *sql.DB) repository.ChangeEventRepository {
	return &changeEventRepository{db: db}
}

func (r *changeEventRepository) Create(ctx context.Context, e *domain.ChangeEvent) error {
	logger.EnterMethod("changeEventRepository.Create", "entity", e.Entity, "entityID", e.EntityID, "outcome", e.Outcome)

	if e.SubmittedAt.IsZero() {
		e.SubmittedAt = time.Now().UTC()
	}
	var payload []byte
	if len(e.Payload) > 0 {
		payload = e.Payload
	}

	query := `INSERT INTO change_events (entity, entity_id, fields, payload, outcome, error, submitted_by, submitted_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	logger.DatabaseCall("INSERT", "change_events", "entity", e.Entity, "entityID", e.EntityID)

	err := r.db.QueryRowContext(ctx, query,
		e.Entity, e.EntityID, pq.Array(e.Fields), payload, e.Outcome, e.Error, e.SubmittedBy, e.SubmittedAt,
	).Scan(&e.ID)
	logger.DatabaseResult("INSERT", 1, err, "changeEventID", e.ID)

	if err != nil {
		logger.ExitMethodWithError("changeEventRepository.Create", err, "entity", e.Entity, "entityID", e.EntityID)
	} else {
		logger.ExitMethod("changeEventRepository.Create", "changeEventID", e.ID)
	}
	return err
}

func (r *changeEventRepository) List(ctx context.Context, entity domain.EntityType, entityID string, limit, offset int32) ([]domain.ChangeEvent, int32, error) {
	var count int32
	countQuery := `SELECT count(*) FROM change_events WHERE ($1 = '' OR entity = $1) AND ($2 = '' OR entity_id = $2)`
	if err := r.db.QueryRowContext(ctx, countQuery, string(entity), entityID).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, entity, entity_id, fields, payload, outcome, error, submitted_by, submitted_at
	          FROM change_events WHERE ($1 = '' OR entity = $1) AND ($2 = '' OR entity_id = $2)
	          ORDER BY submitted_at DESC, id DESC LIMIT $3 OFFSET $4`
	rows, err := r.db.QueryContext(ctx, query, string(entity), entityID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var events []domain.ChangeEvent
	for rows.Next() {
		var e domain.ChangeEvent
		var fields pq.StringArray
		var payload []byte
		var errText, submittedBy sql.NullString
		if err := rows.Scan(&e.ID, &e.Entity, &e.EntityID, &fields, &payload, &e.Outcome, &errText, &submittedBy, &e.SubmittedAt); err != nil {
			return nil, 0, err
		}
		e.Fields = []string(fields)
		e.Payload = payload
		e.Error = errText.String
		e.SubmittedBy = submittedBy.String
		events = append(events, e)
	}
	return events, count, rows.Err()
}

func (r *changeEventRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM change_events WHERE submitted_at < $1`
	logger.DatabaseCall("DELETE", "change_events", "cutoff", cutoff)

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		logger.DatabaseResult("DELETE", 0, err)
		return 0, err
	}
	rows, err := result.RowsAffected()
	logger.DatabaseResult("DELETE", rows, err)
	return rows, err
}
