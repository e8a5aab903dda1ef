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

const fileNotFoundMsg = "file not found"

// CreateFile inserts a new file record.
func (r *Repository) CreateFile(ctx context.Context, file *domain.File) error {
	payloadJSON, err := json.Marshal(file.DealPayload)
	if err != nil {
		return fmt.Errorf("marshal deal payload: %w", err)
	}
	docsJSON, err := json.Marshal(file.Documents)
	if err != nil {
		return fmt.Errorf("marshal documents: %w", err)
	}
	flagsJSON, err := json.Marshal(file.IntakeFlags)
	if err != nil {
		return fmt.Errorf("marshal intake flags: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO files (id, tenant, deal_id, matter_id, service_type, deal_payload, documents, intake_flags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7::jsonb, $8::jsonb, $9, $10)`,
		file.ID, file.Tenant, file.DealID, file.MatterID, file.ServiceType,
		payloadJSON, docsJSON, flagsJSON, file.CreatedAt, file.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	return nil
}

// GetFile retrieves a file scoped to its tenant.
func (r *Repository) GetFile(ctx context.Context, tenant string, id uuid.UUID) (*domain.File, error) {
	var (
		file        domain.File
		payloadJSON []byte
		docsJSON    []byte
		flagsJSON   []byte
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, tenant, deal_id, matter_id, service_type, deal_payload, documents, intake_flags, created_at, updated_at
		FROM files WHERE tenant = $1 AND id = $2`,
		tenant, id,
	).Scan(
		&file.ID, &file.Tenant, &file.DealID, &file.MatterID, &file.ServiceType,
		&payloadJSON, &docsJSON, &flagsJSON, &file.CreatedAt, &file.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(fileNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	if len(payloadJSON) > 0 {
		if err := json.Unmarshal(payloadJSON, &file.DealPayload); err != nil {
			return nil, fmt.Errorf("unmarshal deal payload: %w", err)
		}
	}
	if len(docsJSON) > 0 {
		if err := json.Unmarshal(docsJSON, &file.Documents); err != nil {
			return nil, fmt.Errorf("unmarshal documents: %w", err)
		}
	}
	if len(flagsJSON) > 0 {
		if err := json.Unmarshal(flagsJSON, &file.IntakeFlags); err != nil {
			return nil, fmt.Errorf("unmarshal intake flags: %w", err)
		}
	}
	return &file, nil
}

// SetFileMatterID records the case-management matter id on the file.
func (r *Repository) SetFileMatterID(ctx context.Context, tenant string, id uuid.UUID, matterID int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE files SET matter_id = $3, updated_at = $4
		WHERE tenant = $1 AND id = $2`,
		tenant, id, matterID, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to set file matter id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(fileNotFoundMsg)
	}
	return nil
}
