package datasource

import (
	"context"
	"errors"

	"matter_pipeline_backend/internal/pipeline/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ExtractionSource reads OCR'd contract values from the document-extraction
// store. A field with no extraction row is a known field with an empty value.
type ExtractionSource struct {
	pool    *pgxpool.Pool
	catalog Catalog
	tenant  string
	fileID  uuid.UUID
}

// NewExtractionSource creates a source over the extraction rows of one file.
func NewExtractionSource(pool *pgxpool.Pool, tenant string, fileID uuid.UUID) *ExtractionSource {
	return &ExtractionSource{pool: pool, catalog: ReferenceFields, tenant: tenant, fileID: fileID}
}

func (s *ExtractionSource) Get(ctx context.Context, name string) (domain.DataItem, error) {
	if _, ok := s.catalog[name]; !ok {
		return s.catalog.Item(name, "")
	}

	var value string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM document_extractions
		 WHERE tenant = $1 AND file_id = $2 AND field = $3`,
		s.tenant, s.fileID, name,
	).Scan(&value)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return domain.DataItem{}, err
	}

	return s.catalog.Item(name, value)
}

var _ Source = (*ExtractionSource)(nil)
