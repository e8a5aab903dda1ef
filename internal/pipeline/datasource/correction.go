package datasource

import (
	"context"
	"errors"

	"matter_pipeline_backend/internal/pipeline/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CorrectionSource reads manually corrected field values. It is the override
// layer of a Coalescing source; a field without a correction row yields an
// empty value so the primary wins.
type CorrectionSource struct {
	pool    *pgxpool.Pool
	catalog Catalog
	tenant  string
	fileID  uuid.UUID
}

// NewCorrectionSource creates a source over the correction rows of one file.
func NewCorrectionSource(pool *pgxpool.Pool, tenant string, fileID uuid.UUID) *CorrectionSource {
	return &CorrectionSource{pool: pool, catalog: ReferenceFields, tenant: tenant, fileID: fileID}
}

func (s *CorrectionSource) Get(ctx context.Context, name string) (domain.DataItem, error) {
	if _, ok := s.catalog[name]; !ok {
		return s.catalog.Item(name, "")
	}

	var value string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM field_corrections
		 WHERE tenant = $1 AND file_id = $2 AND field = $3
		 ORDER BY created_at DESC
		 LIMIT 1`,
		s.tenant, s.fileID, name,
	).Scan(&value)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return domain.DataItem{}, err
	}

	return s.catalog.Item(name, value)
}

var _ Source = (*CorrectionSource)(nil)
