package stages

import (
	"context"

	"matter_pipeline_backend/internal/pipeline/domain"
	"matter_pipeline_backend/internal/queue"
)

// The population stages share one shape: guard on the matter-create
// sub-status, apply one manifest section, advance both statuses. The
// sub-status is checked in addition to the job status so a population stage
// replayed with a stale job row still refuses to repeat its side effects.

// HandleParticipants applies the participant section and writes the
// consolidated issues filenote.
func (h *Handlers) HandleParticipants(ctx context.Context, msg queue.Message) error {
	return h.run(ctx, msg, "participants", domain.StatusMatterCreated, queue.TaskDataCollections, func(ctx context.Context, job *domain.Job) error {
		return h.populateSection(ctx, job, domain.StatusParticipants, func(ctx context.Context, mc *domain.MatterCreate, issues *domain.Issues) error {
			if err := h.populate.Participants(ctx, mc.MatterID, mc.Manifest.Participants, issues); err != nil {
				return err
			}
			h.populate.IssuesFilenote(ctx, mc.MatterID, issues.Items())
			return nil
		})
	})
}

// HandleDataCollections applies collection records and values. Failures here
// are fatal for the stage.
func (h *Handlers) HandleDataCollections(ctx context.Context, msg queue.Message) error {
	return h.run(ctx, msg, "data-collections", domain.StatusParticipants, queue.TaskFilenotes, func(ctx context.Context, job *domain.Job) error {
		return h.populateSection(ctx, job, domain.StatusDataCollections, func(ctx context.Context, mc *domain.MatterCreate, _ *domain.Issues) error {
			return h.populate.DataCollections(ctx, mc.MatterID, mc.Manifest.DataCollections)
		})
	})
}

// HandleFilenotes writes the manifest filenotes and tasks.
func (h *Handlers) HandleFilenotes(ctx context.Context, msg queue.Message) error {
	return h.run(ctx, msg, "filenotes", domain.StatusDataCollections, queue.TaskFiles, func(ctx context.Context, job *domain.Job) error {
		return h.populateSection(ctx, job, domain.StatusFilenotes, func(ctx context.Context, mc *domain.MatterCreate, _ *domain.Issues) error {
			return h.populate.Filenotes(ctx, mc.MatterID, mc.Manifest.Filenotes, mc.Manifest.Tasks)
		})
	})
}

// HandleFiles copies the source documents onto the matter.
func (h *Handlers) HandleFiles(ctx context.Context, msg queue.Message) error {
	return h.run(ctx, msg, "files", domain.StatusFilenotes, queue.TaskStepChange, func(ctx context.Context, job *domain.Job) error {
		return h.populateSection(ctx, job, domain.StatusFiles, func(ctx context.Context, mc *domain.MatterCreate, _ *domain.Issues) error {
			return h.populate.Files(ctx, mc.MatterID, mc.Manifest.Files)
		})
	})
}

// HandleStepChange advances the matter to the manifest's target workflow
// node. Structural lookup failures abort the stage.
func (h *Handlers) HandleStepChange(ctx context.Context, msg queue.Message) error {
	return h.run(ctx, msg, "stepchange", domain.StatusFiles, queue.TaskComplete, func(ctx context.Context, job *domain.Job) error {
		return h.populateSection(ctx, job, domain.StatusStepChange, func(ctx context.Context, mc *domain.MatterCreate, _ *domain.Issues) error {
			_, err := h.populate.StepChange(ctx, mc.MatterID, mc.Manifest.Steps)
			return err
		})
	})
}

// populateSection loads the matter-create record, runs the section when its
// sub-status matches, and persists the advanced sub-status and job status.
func (h *Handlers) populateSection(ctx context.Context, job *domain.Job, subStatus domain.Status, apply func(ctx context.Context, mc *domain.MatterCreate, issues *domain.Issues) error) error {
	mc, err := h.store.GetMatterCreateByJob(ctx, job.Tenant, job.ID)
	if err != nil {
		return err
	}

	if mc.Status == subStatus {
		var issues domain.Issues
		issues.Extend(mc.Issues)

		if err := apply(ctx, mc, &issues); err != nil {
			return err
		}

		nextSub, err := domain.Next(subStatus)
		if err != nil {
			return err
		}
		if err := h.store.UpdateMatterCreateStatus(ctx, job.Tenant, mc.ID, nextSub, issues.Items()); err != nil {
			return err
		}
	} else {
		h.log.WithJobID(job.ID.String()).Info("population section replayed, skipping",
			"sub_status", mc.Status, "expected", subStatus)
	}

	next, err := domain.Next(job.Status)
	if err != nil {
		return err
	}
	job.Status = next
	return h.store.UpdateJobStatus(ctx, job.Tenant, job.ID, next)
}
