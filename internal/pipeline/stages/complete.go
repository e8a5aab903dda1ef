package stages

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"matter_pipeline_backend/internal/notify"
	"matter_pipeline_backend/internal/pipeline/domain"
	"matter_pipeline_backend/internal/queue"
)

// HandleComplete finishes the pipeline: the flag-selected step-change
// sub-flow, the optional readiness recomputation, the display name, the
// completion notification, and the completed-on timestamp.
func (h *Handlers) HandleComplete(ctx context.Context, msg queue.Message) error {
	return h.run(ctx, msg, "complete", domain.StatusStepChange, "", func(ctx context.Context, job *domain.Job) error {
		file, err := h.store.GetFile(ctx, msg.Tenant, job.FileID)
		if err != nil {
			return err
		}
		mc, err := h.store.GetMatterCreateByJob(ctx, msg.Tenant, job.ID)
		if err != nil {
			return err
		}

		if err := h.completionStepChange(ctx, job, mc); err != nil {
			return err
		}

		// Readiness is advisory; a failed recomputation never fails the job.
		if err := h.client.RecomputeReadiness(ctx, mc.MatterID); err != nil {
			h.log.Warn("readiness recomputation failed", "job_id", job.ID.String(), "error", err)
		}

		name := ""
		if !job.Meta.Bool(FlagAsyncNameRefresh) {
			name = displayName(job, file, mc.MatterID)
			if err := h.client.UpdateAction(ctx, mc.MatterID, map[string]string{"name": name}); err != nil {
				return err
			}
		}

		if err := h.store.UpdateMatterCreateStatus(ctx, msg.Tenant, mc.ID, domain.StatusCompleted, mc.Issues); err != nil {
			return err
		}

		now := time.Now()
		job.CompletedOn = &now
		job.Status = domain.StatusCompleted
		if err := h.store.UpdateJob(ctx, job); err != nil {
			return err
		}

		h.notifier.Notify(ctx, msg.Tenant, file.DealID, []string{notify.EventMatterCompleted}, completionDetails(job, mc, name))
		return nil
	})
}

// completionStepChange runs the flag-selected sub-flow: online conversions
// and disclosure statements land on different workflow steps. Jobs carrying
// neither flag finish where the stepchange stage left them.
func (h *Handlers) completionStepChange(ctx context.Context, job *domain.Job, mc *domain.MatterCreate) error {
	var key string
	switch {
	case job.Meta.Bool(FlagOnlineConversion):
		key = "step.online_conversion"
	case job.Meta.Bool(FlagDisclosureStatement):
		key = "step.disclosure_statement"
	default:
		return nil
	}

	intent, _ := job.Meta.Get("transaction_type")
	step, err := h.cfg.Get(ctx, job.Tenant, key, intent)
	if err != nil {
		return &domain.ConfigError{Key: key, Err: err}
	}

	nature, _ := job.Meta.Get("nature_of_property")
	_, err = h.populate.StepChange(ctx, mc.MatterID, domain.StepChange{
		TargetStep:       step,
		NatureOfProperty: nature,
	})
	return err
}

// displayName builds the case display name from the job facts plus a
// two-digit suffix for uniqueness among same-day matters.
func displayName(job *domain.Job, file *domain.File, matterID int64) string {
	state, _ := job.Meta.Get("state")
	intent, _ := job.Meta.Get("transaction_type")

	parts := []string{
		strings.ToUpper(state),
		strings.ToUpper(intent),
		file.DealPayload["practitioner_id"],
		file.DealPayload["file_owner_id"],
		strings.ToUpper(file.DealPayload["client_code"]),
		strconv.FormatInt(matterID, 10),
		fmt.Sprintf("%02d", rand.Intn(100)),
	}

	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "-")
}

func completionDetails(job *domain.Job, mc *domain.MatterCreate, name string) map[string]string {
	details := map[string]string{
		"job_id":    job.ID.String(),
		"matter_id": strconv.FormatInt(mc.MatterID, 10),
		"issues":    strconv.Itoa(len(mc.Issues)),
	}
	if name != "" {
		details["matter_name"] = name
	}
	for _, key := range []string{"state", "transaction_type", "nature_of_property"} {
		if v, ok := job.Meta.Get(key); ok {
			details[key] = v
		}
	}
	return details
}
