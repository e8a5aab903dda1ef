// Package casemgmt talks to the external case-management system. The rest of
// the pipeline depends only on the Client interface so stage and populator
// tests can substitute fakes.
package casemgmt

import "context"

// Client is the surface of the external case-management API used by the
// pipeline.
type Client interface {
	CreateMatter(ctx context.Context, req CreateMatterRequest) (*Matter, error)
	UpdateAction(ctx context.Context, matterID int64, fields map[string]string) error
	UpdateDataCollectionRecordValue(ctx context.Context, matterID int64, collection, field, value string) error
	CreateParticipant(ctx context.Context, p NewParticipant) (int64, error)
	LinkParticipant(ctx context.Context, link ParticipantLink) error
	CreateTask(ctx context.Context, matterID int64, name string) (int64, error)
	CreateFileNote(ctx context.Context, matterID int64, text string) error
	UploadDocument(ctx context.Context, doc DocumentUpload) (string, error)
	LinkDocumentToMatter(ctx context.Context, matterID int64, documentID, name string) error
	GetActionChangeStep(ctx context.Context, matterID int64) (*ActionChangeStep, error)
	UpdateActionChangeStepNode(ctx context.Context, matterID int64, update StepNodeUpdate) error
	GetParticipants(ctx context.Context, matterID int64) ([]Participant, error)
	GetPropertyParticipantID(ctx context.Context, matterID int64) (int64, error)
	RecomputeReadiness(ctx context.Context, matterID int64) error
}
