package domain

import (
	"encoding/json"
	"time"
)

type EntityType string

const (
	EntityMachine EntityType = "MACHINE"
	EntityRental  EntityType = "RENTAL"
	EntityConfig  EntityType = "CONFIG"
)

type ChangeOutcome string

const (
	ChangeOutcomeSubmitted ChangeOutcome = "SUBMITTED"
	ChangeOutcomeFailed    ChangeOutcome = "FAILED"
	ChangeOutcomeSkipped   ChangeOutcome = "SKIPPED"
)

// ChangeEvent records one exit from edit mode and what was sent to the backend.
type ChangeEvent struct {
	ID          int64           `json:"id"`
	Entity      EntityType      `json:"entity"`
	EntityID    string          `json:"entity_id"`
	Fields      []string        `json:"fields"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	Outcome     ChangeOutcome   `json:"outcome"`
	Error       string          `json:"error,omitempty"`
	SubmittedBy string          `json:"submitted_by,omitempty"`
	SubmittedAt time.Time       `json:"submitted_at"`
}
