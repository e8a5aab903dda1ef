// Package stages implements the pipeline state machine. Each handler is
// bound to one queue route, checks the job status against its exact
// precondition, performs its side effects, persists the advanced status, and
// only then forwards the next-stage message. A message arriving at any other
// status is a replay: side effects are skipped but the message still moves
// forward so the pipeline keeps draining under at-least-once delivery.
package stages

import (
	"context"
	"fmt"

	"matter_pipeline_backend/internal/casemgmt"
	"matter_pipeline_backend/internal/notify"
	"matter_pipeline_backend/internal/pipeline/builder"
	"matter_pipeline_backend/internal/pipeline/domain"
	"matter_pipeline_backend/internal/pipeline/formatter"
	"matter_pipeline_backend/internal/queue"
	"matter_pipeline_backend/platform/logger"

	"github.com/google/uuid"
)

// Store is the persistence surface the stage handlers need.
type Store interface {
	GetJob(ctx context.Context, tenant string, id uuid.UUID) (*domain.Job, error)
	GetFile(ctx context.Context, tenant string, id uuid.UUID) (*domain.File, error)
	UpdateJob(ctx context.Context, job *domain.Job) error
	UpdateJobStatus(ctx context.Context, tenant string, id uuid.UUID, status domain.Status) error
	MarkJobFailed(ctx context.Context, tenant string, id uuid.UUID, reason string) error
	UpdateJobAndFile(ctx context.Context, job *domain.Job, file *domain.File) error
	SetFileMatterID(ctx context.Context, tenant string, id uuid.UUID, matterID int64) error
	CreateMatterCreate(ctx context.Context, mc *domain.MatterCreate) error
	GetMatterCreateByJob(ctx context.Context, tenant string, jobID uuid.UUID) (*domain.MatterCreate, error)
	UpdateMatterCreateStatus(ctx context.Context, tenant string, id uuid.UUID, status domain.Status, issues []domain.Issue) error
}

// ManifestBuilder builds the manifest for a job.
type ManifestBuilder interface {
	Build(ctx context.Context, tenant string, jobID uuid.UUID) (*builder.Result, error)
}

// MatterPopulator applies manifest sections to a matter.
type MatterPopulator interface {
	Participants(ctx context.Context, matterID int64, mp domain.ManifestParticipants, issues *domain.Issues) error
	DataCollections(ctx context.Context, matterID int64, dc domain.ManifestDataCollections) error
	Filenotes(ctx context.Context, matterID int64, notes []domain.Filenote, tasks []domain.Task) error
	Files(ctx context.Context, matterID int64, refs []domain.DocumentRef) error
	StepChange(ctx context.Context, matterID int64, change domain.StepChange) (int64, error)
	IssuesFilenote(ctx context.Context, matterID int64, issues []domain.Issue)
}

// Handlers carries the stage handler set and its dependencies.
type Handlers struct {
	store    Store
	build    ManifestBuilder
	populate MatterPopulator
	client   casemgmt.Client
	cfg      formatter.Config
	notifier notify.Notifier
	queue    queue.Publisher
	log      *logger.Logger
}

// New creates the stage handlers.
func New(store Store, build ManifestBuilder, populate MatterPopulator, client casemgmt.Client, cfg formatter.Config, notifier notify.Notifier, publisher queue.Publisher, log *logger.Logger) *Handlers {
	return &Handlers{
		store:    store,
		build:    build,
		populate: populate,
		client:   client,
		cfg:      cfg,
		notifier: notifier,
		queue:    publisher,
		log:      log,
	}
}

// Register binds every stage route on the worker.
func (h *Handlers) Register(w *queue.Worker) {
	w.Handle(queue.TaskIntake, h.HandleIntake)
	w.Handle(queue.TaskCreateMatter, h.HandleCreateMatter)
	w.Handle(queue.TaskParticipants, h.HandleParticipants)
	w.Handle(queue.TaskDataCollections, h.HandleDataCollections)
	w.Handle(queue.TaskFilenotes, h.HandleFilenotes)
	w.Handle(queue.TaskFiles, h.HandleFiles)
	w.Handle(queue.TaskStepChange, h.HandleStepChange)
	w.Handle(queue.TaskComplete, h.HandleComplete)
}

// run wraps one stage invocation: precondition check, side effects, failure
// conversion, forwarding. The body is responsible for persisting its own
// mutations, including the advanced status, before run publishes the next
// message. An error from the body converts into exactly one best-effort
// failure notification plus the terminal error-processing status, and the
// message chain stops there.
func (h *Handlers) run(ctx context.Context, msg queue.Message, stage string, expected domain.Status, next string, body func(ctx context.Context, job *domain.Job) error) error {
	jobID, err := uuid.Parse(msg.JobID)
	if err != nil {
		return fmt.Errorf("parse job id %q: %w", msg.JobID, err)
	}

	log := h.log.WithJobID(msg.JobID).WithStage(stage)

	job, err := h.store.GetJob(ctx, msg.Tenant, jobID)
	if err != nil {
		return fmt.Errorf("load job %s: %w", msg.JobID, err)
	}

	if job.Status == expected {
		if err := body(ctx, job); err != nil {
			h.fail(ctx, msg, job, stage, err)
			return nil
		}
		log.StageEvent(msg.JobID, stage, "applied")
	} else {
		log.StageEvent(msg.JobID, stage, fmt.Sprintf("replayed at status %s, skipping", job.Status))
		if job.Status.IsTerminal() {
			return nil
		}
	}

	if next == "" {
		return nil
	}
	if err := h.queue.Next(ctx, next, msg); err != nil {
		// The stage already persisted; redelivery of this message is safe.
		return fmt.Errorf("publish %s: %w", next, err)
	}
	return nil
}

// fail runs the uniform failure path: one notification to the originating
// system, error-processing with the serialized reason, no next message.
func (h *Handlers) fail(ctx context.Context, msg queue.Message, job *domain.Job, stage string, cause error) {
	h.log.WithJobID(msg.JobID).StageError(msg.JobID, stage, cause)

	dealID := ""
	if file, err := h.store.GetFile(ctx, msg.Tenant, job.FileID); err == nil {
		dealID = file.DealID
	}

	h.notifier.Notify(ctx, msg.Tenant, dealID, []string{notify.EventMatterFailed}, map[string]string{
		"job_id": msg.JobID,
		"stage":  stage,
		"error":  cause.Error(),
	})

	reason := fmt.Sprintf("stage %s: %v", stage, cause)
	if err := h.store.MarkJobFailed(ctx, msg.Tenant, job.ID, reason); err != nil {
		h.log.Error("failed to persist error status", "job_id", msg.JobID, "error", err)
	}
}
