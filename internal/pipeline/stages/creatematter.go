package stages

import (
	"context"
	"fmt"
	"time"

	"matter_pipeline_backend/internal/casemgmt"
	"matter_pipeline_backend/internal/pipeline/domain"
	"matter_pipeline_backend/internal/queue"

	"github.com/google/uuid"
)

// HandleCreateMatter builds the manifest exactly once, opens the matter in
// the case-management system, and persists the manifest with its population
// sub-status. The manifest is never recomputed after this point.
func (h *Handlers) HandleCreateMatter(ctx context.Context, msg queue.Message) error {
	return h.run(ctx, msg, "create-matter", domain.StatusInProgress, queue.TaskParticipants, func(ctx context.Context, job *domain.Job) error {
		file, err := h.store.GetFile(ctx, msg.Tenant, job.FileID)
		if err != nil {
			return err
		}

		result, err := h.build.Build(ctx, msg.Tenant, job.ID)
		if err != nil {
			return err
		}

		matter, err := h.client.CreateMatter(ctx, casemgmt.CreateMatterRequest{
			Name:        fmt.Sprintf("New matter (deal %s)", file.DealID),
			ServiceType: job.ServiceType,
			Reference:   file.DealID,
		})
		if err != nil {
			return err
		}

		now := time.Now()
		mc := &domain.MatterCreate{
			ID:        uuid.New(),
			JobID:     job.ID,
			Tenant:    job.Tenant,
			MatterID:  matter.ID,
			Manifest:  result.Manifest,
			Status:    domain.StatusParticipants,
			Issues:    result.Issues,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := h.store.CreateMatterCreate(ctx, mc); err != nil {
			return err
		}
		if err := h.store.SetFileMatterID(ctx, msg.Tenant, file.ID, matter.ID); err != nil {
			return err
		}

		job.MatterIDs = append([]int64{matter.ID}, matter.RelatedIDs...)
		for k, v := range result.Manifest.Meta {
			job.Meta.Set(k, v)
		}

		next, _, err := domain.Advance(job.Status, domain.StatusInProgress)
		if err != nil {
			return err
		}
		job.Status = next
		return h.store.UpdateJob(ctx, job)
	})
}
