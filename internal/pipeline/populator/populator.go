// Package populator applies a built manifest against the case-management
// system, one section per pipeline stage. Each section carries its own
// failure policy: participant and filenote work is best-effort per item,
// collection records and the step change abort the stage.
package populator

import (
	"context"
	"fmt"

	"matter_pipeline_backend/internal/casemgmt"
	"matter_pipeline_backend/internal/documents"
	"matter_pipeline_backend/internal/pipeline/domain"
	"matter_pipeline_backend/platform/logger"
)

// Populator writes manifest sections to a matter.
type Populator struct {
	client     casemgmt.Client
	docs       documents.Store
	log        *logger.Logger
	production bool
}

// New creates a Populator. The production flag governs whether step-change
// message texts are carried forward; outside production only the message ids
// move so no real correspondence is triggered from test environments.
func New(client casemgmt.Client, docs documents.Store, log *logger.Logger, production bool) *Populator {
	return &Populator{client: client, docs: docs, log: log, production: production}
}

// Participants applies the participant section in dependency order: links
// for already-known participants, then new participants, then the declared
// participant-to-participant links. Every call is best-effort per item; a
// failed link never stops the remaining ones.
func (p *Populator) Participants(ctx context.Context, matterID int64, mp domain.ManifestParticipants, issues *domain.Issues) error {
	for _, existing := range mp.Existing {
		err := p.client.LinkParticipant(ctx, casemgmt.ParticipantLink{
			MatterID:      matterID,
			ParticipantID: existing.ParticipantID,
			TypeID:        existing.TypeID,
		})
		if err != nil {
			p.log.Error("existing participant link failed",
				"matter_id", matterID, "role", existing.Role, "error", err)
			issues.Addf("could not link existing %s participant %d", existing.Role, existing.ParticipantID)
		}
	}

	createdByRole := make(map[domain.ParticipantRole]int64)
	for _, np := range mp.New {
		id, err := p.client.CreateParticipant(ctx, casemgmt.NewParticipant{
			MatterID:    matterID,
			TypeID:      np.TypeID,
			IsCompany:   np.IsCompany,
			CompanyName: np.CompanyName,
			FirstName:   np.Name.First,
			MiddleName:  np.Name.Middle,
			LastName:    np.Name.Last,
			Email:       np.Email,
			Phone:       np.Phone,
			Address:     np.Address,
		})
		if err != nil {
			p.log.Error("participant creation failed",
				"matter_id", matterID, "role", np.Role, "error", err)
			issues.Addf("could not create %s participant", np.Role)
			continue
		}
		if _, ok := createdByRole[np.Role]; !ok {
			createdByRole[np.Role] = id
		}
	}

	for _, link := range mp.LinkMatter {
		sourceID, ok := createdByRole[link.SourceRole]
		if !ok {
			p.log.Warn("declared link skipped, source participant was not created",
				"matter_id", matterID, "source_role", link.SourceRole)
			continue
		}
		targetID, ok := createdByRole[link.TargetRole]
		if !ok {
			p.log.Warn("declared link skipped, target participant was not created",
				"matter_id", matterID, "target_role", link.TargetRole)
			continue
		}

		err := p.client.LinkParticipant(ctx, casemgmt.ParticipantLink{
			MatterID:            matterID,
			ParticipantID:       sourceID,
			TypeID:              link.TypeID,
			TargetParticipantID: targetID,
		})
		if err != nil {
			p.log.Error("declared participant link failed",
				"matter_id", matterID, "source_role", link.SourceRole, "error", err)
			issues.Addf("could not link %s to %s", link.SourceRole, link.TargetRole)
		}
	}

	return nil
}

// DataCollections applies collection work. Any failure here aborts the
// stage: a matter with half its key dates is worse than a failed job.
func (p *Populator) DataCollections(ctx context.Context, matterID int64, dc domain.ManifestDataCollections) error {
	for _, record := range dc.Create {
		for field, value := range record.Values {
			if err := p.client.UpdateDataCollectionRecordValue(ctx, matterID, record.Collection, field, value); err != nil {
				return fmt.Errorf("create collection record %s: %w", record.Collection, err)
			}
		}
	}
	for _, v := range dc.Prepare {
		if err := p.client.UpdateDataCollectionRecordValue(ctx, matterID, v.Collection, v.Field, v.Value); err != nil {
			return fmt.Errorf("set collection value %s.%s: %w", v.Collection, v.Field, err)
		}
	}
	return nil
}

// Filenotes writes the manifest filenotes and creates the manifest tasks.
// Both are best-effort per item.
func (p *Populator) Filenotes(ctx context.Context, matterID int64, notes []domain.Filenote, tasks []domain.Task) error {
	for _, note := range notes {
		if err := p.client.CreateFileNote(ctx, matterID, note.Text); err != nil {
			p.log.Error("filenote creation failed", "matter_id", matterID, "error", err)
		}
	}
	for _, task := range tasks {
		if _, err := p.client.CreateTask(ctx, matterID, task.Name); err != nil {
			p.log.Error("task creation failed", "matter_id", matterID, "task", task.Name, "error", err)
		}
	}
	return nil
}

// Files streams each source document into the case-management system and
// links it to the matter. A failed document is skipped; the rest still move.
func (p *Populator) Files(ctx context.Context, matterID int64, refs []domain.DocumentRef) error {
	for _, ref := range refs {
		if err := p.copyDocument(ctx, matterID, ref); err != nil {
			p.log.Error("document transfer failed",
				"matter_id", matterID, "document", ref.Name, "error", err)
		}
	}
	return nil
}

func (p *Populator) copyDocument(ctx context.Context, matterID int64, ref domain.DocumentRef) error {
	body, size, err := p.docs.Download(ctx, ref.Bucket, ref.Key)
	if err != nil {
		return err
	}
	defer body.Close()

	docID, err := p.client.UploadDocument(ctx, casemgmt.DocumentUpload{
		Name:        ref.Name,
		ContentType: ref.ContentType,
		Size:        size,
		Body:        body,
	})
	if err != nil {
		return err
	}

	return p.client.LinkDocumentToMatter(ctx, matterID, docID, ref.Name)
}
