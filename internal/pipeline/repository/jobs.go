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

const jobNotFoundMsg = "job not found"

// CreateJob inserts a new job.
func (r *Repository) CreateJob(ctx context.Context, job *domain.Job) error {
	metaJSON, err := json.Marshal(job.Meta)
	if err != nil {
		return fmt.Errorf("marshal job meta: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO jobs (id, tenant, file_id, service_type, status, meta, matter_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9)`,
		job.ID, job.Tenant, job.FileID, job.ServiceType, job.Status,
		metaJSON, job.MatterIDs, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// GetJob retrieves a job scoped to its tenant.
func (r *Repository) GetJob(ctx context.Context, tenant string, id uuid.UUID) (*domain.Job, error) {
	var (
		job      domain.Job
		metaJSON []byte
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, tenant, file_id, service_type, status, meta, matter_ids,
		       COALESCE(error_reason, ''), completed_on, created_at, updated_at
		FROM jobs WHERE tenant = $1 AND id = $2`,
		tenant, id,
	).Scan(
		&job.ID, &job.Tenant, &job.FileID, &job.ServiceType, &job.Status,
		&metaJSON, &job.MatterIDs, &job.ErrorReason, &job.CompletedOn,
		&job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(jobNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &job.Meta); err != nil {
			return nil, fmt.Errorf("unmarshal job meta: %w", err)
		}
	}
	return &job, nil
}

// UpdateJob writes the mutable fields of a job. Callers persist every
// mutation before publishing the next stage message.
func (r *Repository) UpdateJob(ctx context.Context, job *domain.Job) error {
	metaJSON, err := json.Marshal(job.Meta)
	if err != nil {
		return fmt.Errorf("marshal job meta: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE jobs
		SET status = $3, meta = $4::jsonb, matter_ids = $5,
		    error_reason = NULLIF($6, ''), completed_on = $7, updated_at = $8
		WHERE tenant = $1 AND id = $2`,
		job.Tenant, job.ID, job.Status, metaJSON, job.MatterIDs,
		job.ErrorReason, job.CompletedOn, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(jobNotFoundMsg)
	}
	return nil
}

// UpdateJobStatus advances only the job status.
func (r *Repository) UpdateJobStatus(ctx context.Context, tenant string, id uuid.UUID, status domain.Status) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE jobs SET status = $3, updated_at = $4
		WHERE tenant = $1 AND id = $2`,
		tenant, id, status, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(jobNotFoundMsg)
	}
	return nil
}

// MarkJobFailed sets the terminal error-processing status with the
// serialized failure reason.
func (r *Repository) MarkJobFailed(ctx context.Context, tenant string, id uuid.UUID, reason string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE jobs SET status = $3, error_reason = $4, updated_at = $5
		WHERE tenant = $1 AND id = $2`,
		tenant, id, domain.StatusErrorProcessing, reason, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to mark job failed: %w", err)
	}
	return nil
}

// UpdateJobAndFile writes a job and its file atomically. Used by the intake
// stage so the derived flags and the advanced status land together.
func (r *Repository) UpdateJobAndFile(ctx context.Context, job *domain.Job, file *domain.File) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin intake transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	metaJSON, err := json.Marshal(job.Meta)
	if err != nil {
		return fmt.Errorf("marshal job meta: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE jobs
		SET status = $3, meta = $4::jsonb, matter_ids = $5, updated_at = $6
		WHERE tenant = $1 AND id = $2`,
		job.Tenant, job.ID, job.Status, metaJSON, job.MatterIDs, time.Now(),
	); err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}

	flagsJSON, err := json.Marshal(file.IntakeFlags)
	if err != nil {
		return fmt.Errorf("marshal intake flags: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE files
		SET matter_id = $3, intake_flags = $4::jsonb, updated_at = $5
		WHERE tenant = $1 AND id = $2`,
		file.Tenant, file.ID, file.MatterID, flagsJSON, time.Now(),
	); err != nil {
		return fmt.Errorf("failed to update file: %w", err)
	}

	return tx.Commit(ctx)
}
