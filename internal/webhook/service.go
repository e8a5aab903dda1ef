package webhook

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"matter_pipeline_backend/internal/documents"
	"matter_pipeline_backend/internal/pipeline/domain"
	"matter_pipeline_backend/internal/pipeline/repository"
	"matter_pipeline_backend/internal/queue"
	"matter_pipeline_backend/platform/logger"

	"github.com/google/uuid"
)

// IntakeSubmission is a validated deal snapshot from the CRM.
type IntakeSubmission struct {
	DealID      string
	ServiceType string
	Payload     map[string]string
	Documents   []IntakeDocument
}

// IntakeDocument is one base64-encoded source document on a submission.
type IntakeDocument struct {
	Name        string
	ContentType string
	Content     string
}

// Service turns intake submissions into files and jobs and starts the
// pipeline for them.
type Service struct {
	repo      *repository.Repository
	docs      documents.Store
	bucket    string
	publisher queue.Publisher
	log       *logger.Logger
}

// NewService creates the intake service.
func NewService(repo *repository.Repository, docs documents.Store, bucket string, publisher queue.Publisher, log *logger.Logger) *Service {
	return &Service{repo: repo, docs: docs, bucket: bucket, publisher: publisher, log: log}
}

// Intake stores the submission as a file plus job and enqueues the first
// stage. It returns the created job id.
func (s *Service) Intake(ctx context.Context, tenant string, sub IntakeSubmission) (uuid.UUID, error) {
	fileID := uuid.New()

	refs, err := s.storeDocuments(ctx, fileID, sub.Documents)
	if err != nil {
		return uuid.Nil, err
	}

	now := time.Now()
	file := &domain.File{
		ID:          fileID,
		Tenant:      tenant,
		DealID:      sub.DealID,
		ServiceType: sub.ServiceType,
		DealPayload: sub.Payload,
		Documents:   refs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateFile(ctx, file); err != nil {
		return uuid.Nil, err
	}

	job := &domain.Job{
		ID:          uuid.New(),
		Tenant:      tenant,
		FileID:      fileID,
		ServiceType: sub.ServiceType,
		Status:      domain.StatusCreated,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateJob(ctx, job); err != nil {
		return uuid.Nil, err
	}

	msg := queue.Message{FileID: fileID.String(), JobID: job.ID.String(), Tenant: tenant}
	if err := s.publisher.Next(ctx, queue.TaskIntake, msg); err != nil {
		return uuid.Nil, fmt.Errorf("enqueue intake: %w", err)
	}

	s.log.Info("intake accepted", "tenant", tenant, "deal_id", sub.DealID, "job_id", job.ID.String())
	return job.ID, nil
}

func (s *Service) storeDocuments(ctx context.Context, fileID uuid.UUID, docs []IntakeDocument) ([]domain.DocumentRef, error) {
	var refs []domain.DocumentRef
	for _, doc := range docs {
		data, err := base64.StdEncoding.DecodeString(doc.Content)
		if err != nil {
			return nil, fmt.Errorf("decode document %s: %w", doc.Name, err)
		}

		contentType := doc.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		key, err := s.docs.Upload(ctx, s.bucket, fileID.String(), doc.Name, contentType,
			bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("store document %s: %w", doc.Name, err)
		}

		refs = append(refs, domain.DocumentRef{
			Bucket:      s.bucket,
			Key:         key,
			Name:        doc.Name,
			ContentType: contentType,
		})
	}
	return refs, nil
}
