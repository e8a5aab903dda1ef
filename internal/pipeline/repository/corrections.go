package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InsertCorrection records a human field correction for a file. Corrections
// are append-only; the coalescing data source reads the latest one per field.
func (r *Repository) InsertCorrection(ctx context.Context, tenant string, fileID uuid.UUID, field, value, author string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO field_corrections (id, tenant, file_id, field, value, author, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New(), tenant, fileID, field, value, author, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert field correction: %w", err)
	}
	return nil
}
