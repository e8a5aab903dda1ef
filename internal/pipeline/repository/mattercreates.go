package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"matter_pipeline_backend/internal/pipeline/domain"
	"matter_pipeline_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const matterCreateNotFoundMsg = "matter create record not found"

// CreateMatterCreate persists a freshly built manifest with its sub-status.
func (r *Repository) CreateMatterCreate(ctx context.Context, mc *domain.MatterCreate) error {
	manifestJSON, err := json.Marshal(mc.Manifest)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	issuesJSON, err := json.Marshal(mc.Issues)
	if err != nil {
		return fmt.Errorf("marshal issues: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO matter_creates (id, job_id, tenant, matter_id, manifest, status, issues, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7::jsonb, $8, $9)`,
		mc.ID, mc.JobID, mc.Tenant, mc.MatterID, manifestJSON, mc.Status, issuesJSON,
		mc.CreatedAt, mc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create matter create record: %w", err)
	}
	return nil
}

// GetMatterCreateByJob retrieves the matter-create record for a job.
func (r *Repository) GetMatterCreateByJob(ctx context.Context, tenant string, jobID uuid.UUID) (*domain.MatterCreate, error) {
	var (
		mc           domain.MatterCreate
		manifestJSON []byte
		issuesJSON   []byte
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, job_id, tenant, matter_id, manifest, status, issues, created_at, updated_at
		FROM matter_creates WHERE tenant = $1 AND job_id = $2`,
		tenant, jobID,
	).Scan(
		&mc.ID, &mc.JobID, &mc.Tenant, &mc.MatterID, &manifestJSON, &mc.Status,
		&issuesJSON, &mc.CreatedAt, &mc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(matterCreateNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get matter create record: %w", err)
	}

	if err := json.Unmarshal(manifestJSON, &mc.Manifest); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	if len(issuesJSON) > 0 {
		if err := json.Unmarshal(issuesJSON, &mc.Issues); err != nil {
			return nil, fmt.Errorf("unmarshal issues: %w", err)
		}
	}
	return &mc, nil
}

// UpdateMatterCreateStatus advances the population sub-status and replaces
// the accumulated issues. The manifest itself is immutable once written.
func (r *Repository) UpdateMatterCreateStatus(ctx context.Context, tenant string, id uuid.UUID, status domain.Status, issues []domain.Issue) error {
	issuesJSON, err := json.Marshal(issues)
	if err != nil {
		return fmt.Errorf("marshal issues: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE matter_creates SET status = $3, issues = $4::jsonb, updated_at = $5
		WHERE tenant = $1 AND id = $2`,
		tenant, id, status, issuesJSON, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update matter create record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(matterCreateNotFoundMsg)
	}
	return nil
}
