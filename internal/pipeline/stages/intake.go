package stages

import (
	"context"

	"matter_pipeline_backend/internal/pipeline/domain"
	"matter_pipeline_backend/internal/queue"
)

// Meta flags derived at intake and consumed by the completion stage.
const (
	FlagOnlineConversion    = "online_conversion"
	FlagDisclosureStatement = "disclosure_statement"
	FlagAsyncNameRefresh    = "async_name_refresh"
	FlagContractUploaded    = "contract_uploaded"
)

// HandleIntake derives the intake flags from the deal snapshot and persists
// job and file together in one transaction before moving to create-matter.
func (h *Handlers) HandleIntake(ctx context.Context, msg queue.Message) error {
	return h.run(ctx, msg, "intake", domain.StatusCreated, queue.TaskCreateMatter, func(ctx context.Context, job *domain.Job) error {
		file, err := h.store.GetFile(ctx, msg.Tenant, job.FileID)
		if err != nil {
			return err
		}

		flags := deriveIntakeFlags(file)
		file.IntakeFlags = flags
		for _, key := range []string{FlagOnlineConversion, FlagDisclosureStatement, FlagAsyncNameRefresh, FlagContractUploaded} {
			if flags[key] {
				job.Meta.Set(key, "true")
			}
		}

		next, _, err := domain.Advance(job.Status, domain.StatusCreated)
		if err != nil {
			return err
		}
		job.Status = next

		return h.store.UpdateJobAndFile(ctx, job, file)
	})
}

func deriveIntakeFlags(file *domain.File) map[string]bool {
	flags := map[string]bool{
		FlagOnlineConversion:    file.DealPayload[FlagOnlineConversion] == "true",
		FlagDisclosureStatement: file.DealPayload[FlagDisclosureStatement] == "true",
		FlagAsyncNameRefresh:    file.DealPayload[FlagAsyncNameRefresh] == "true",
		FlagContractUploaded:    len(file.Documents) > 0,
	}
	return flags
}
