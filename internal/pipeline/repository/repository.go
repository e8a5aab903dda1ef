// Package repository persists jobs, files and matter-create records. All
// SQL is hand-written against pgx; JSONB columns are marshalled explicitly.
package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides database operations for the pipeline.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a pipeline repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}
