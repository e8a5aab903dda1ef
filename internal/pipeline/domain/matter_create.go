package domain

import (
	"time"

	"github.com/google/uuid"
)

// MatterCreate wraps a built manifest together with the population
// sub-status and the accumulated issues. The sub-status is the idempotency
// guard for the population stages: side effects of a stage run only when the
// sub-status equals that stage's exact precondition.
type MatterCreate struct {
	ID        uuid.UUID
	JobID     uuid.UUID
	Tenant    string
	MatterID  int64
	Manifest  Manifest
	Status    Status
	Issues    []Issue
	CreatedAt time.Time
	UpdatedAt time.Time
}
