// Package builder assembles one complete manifest per job by driving the
// job's formatter variant through its accessors in a fixed order.
package builder

import (
	"context"
	"fmt"

	"matter_pipeline_backend/internal/pipeline/datasource"
	"matter_pipeline_backend/internal/pipeline/domain"
	"matter_pipeline_backend/internal/pipeline/formatter"
	"matter_pipeline_backend/platform/logger"

	"github.com/google/uuid"
)

// Store loads the job and its originating file.
type Store interface {
	GetJob(ctx context.Context, tenant string, id uuid.UUID) (*domain.Job, error)
	GetFile(ctx context.Context, tenant string, id uuid.UUID) (*domain.File, error)
}

// SourceFactory builds the data source for one job. Production wiring layers
// the correction overlay over the extraction store for contract uploads and
// serves CRM deal payloads directly.
type SourceFactory func(job *domain.Job, file *domain.File) datasource.Source

// Builder orchestrates a formatter to produce a manifest.
type Builder struct {
	store   Store
	sources SourceFactory
	cfg     formatter.Config
	log     *logger.Logger
}

// New creates a Builder.
func New(store Store, sources SourceFactory, cfg formatter.Config, log *logger.Logger) *Builder {
	return &Builder{store: store, sources: sources, cfg: cfg, log: log}
}

// Result is a built manifest plus the issues collected while formatting.
type Result struct {
	Manifest domain.Manifest
	Issues   []domain.Issue
}

// Build loads the job, selects the formatter variant by business line, and
// invokes its accessors in a fixed order. It fails only when the job is
// missing or its service type is unrecognized; data gaps surface as issues.
func (b *Builder) Build(ctx context.Context, tenant string, jobID uuid.UUID) (*Result, error) {
	job, err := b.store.GetJob(ctx, tenant, jobID)
	if err != nil {
		return nil, fmt.Errorf("load job %s: %w", jobID, err)
	}

	file, err := b.store.GetFile(ctx, tenant, job.FileID)
	if err != nil {
		return nil, fmt.Errorf("load file %s: %w", job.FileID, err)
	}

	f, err := formatter.New(job.ServiceType, formatter.Deps{
		Source: b.sources(job, file),
		Config: b.cfg,
		Job:    job,
		File:   file,
		Log:    b.log,
	})
	if err != nil {
		return nil, err
	}

	var manifest domain.Manifest

	if manifest.Participants, err = f.Participants(ctx); err != nil {
		return nil, err
	}
	if manifest.DataCollections, err = f.DataCollections(ctx); err != nil {
		return nil, err
	}
	if manifest.Filenotes, err = f.Filenotes(ctx); err != nil {
		return nil, err
	}
	if manifest.Tasks, err = f.Tasks(ctx); err != nil {
		return nil, err
	}
	if manifest.Files, err = f.Files(ctx); err != nil {
		return nil, err
	}
	if manifest.Steps, err = f.Steps(ctx); err != nil {
		return nil, err
	}
	if manifest.Meta, err = f.Meta(ctx); err != nil {
		return nil, err
	}

	return &Result{Manifest: manifest, Issues: f.Issues()}, nil
}
