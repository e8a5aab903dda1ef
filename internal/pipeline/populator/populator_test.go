package populator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"matter_pipeline_backend/internal/casemgmt"
	"matter_pipeline_backend/internal/pipeline/domain"
	"matter_pipeline_backend/platform/logger"
)

type fakeClient struct {
	nextParticipantID int64
	created           []casemgmt.NewParticipant
	links             []casemgmt.ParticipantLink
	collectionValues  []string
	filenotes         []string
	tasks             []string
	uploads           []string
	docLinks          []string
	nodeUpdates       []casemgmt.StepNodeUpdate
	graph             *casemgmt.ActionChangeStep

	failLinks      bool
	failCollection bool
	failUploadName string
}

func (c *fakeClient) CreateMatter(_ context.Context, _ casemgmt.CreateMatterRequest) (*casemgmt.Matter, error) {
	return &casemgmt.Matter{ID: 9001}, nil
}

func (c *fakeClient) UpdateAction(_ context.Context, _ int64, _ map[string]string) error {
	return nil
}

func (c *fakeClient) UpdateDataCollectionRecordValue(_ context.Context, _ int64, collection, field, value string) error {
	if c.failCollection {
		return errors.New("collection write refused")
	}
	c.collectionValues = append(c.collectionValues, collection+"."+field+"="+value)
	return nil
}

func (c *fakeClient) CreateParticipant(_ context.Context, p casemgmt.NewParticipant) (int64, error) {
	c.created = append(c.created, p)
	c.nextParticipantID++
	return c.nextParticipantID, nil
}

func (c *fakeClient) LinkParticipant(_ context.Context, link casemgmt.ParticipantLink) error {
	if c.failLinks {
		return errors.New("link refused")
	}
	c.links = append(c.links, link)
	return nil
}

func (c *fakeClient) CreateTask(_ context.Context, _ int64, name string) (int64, error) {
	c.tasks = append(c.tasks, name)
	return int64(len(c.tasks)), nil
}

func (c *fakeClient) CreateFileNote(_ context.Context, _ int64, text string) error {
	c.filenotes = append(c.filenotes, text)
	return nil
}

func (c *fakeClient) UploadDocument(_ context.Context, doc casemgmt.DocumentUpload) (string, error) {
	if doc.Name == c.failUploadName {
		return "", errors.New("upload refused")
	}
	c.uploads = append(c.uploads, doc.Name)
	return "doc-" + doc.Name, nil
}

func (c *fakeClient) LinkDocumentToMatter(_ context.Context, _ int64, documentID, _ string) error {
	c.docLinks = append(c.docLinks, documentID)
	return nil
}

func (c *fakeClient) GetActionChangeStep(_ context.Context, _ int64) (*casemgmt.ActionChangeStep, error) {
	if c.graph == nil {
		return nil, errors.New("no step graph")
	}
	return c.graph, nil
}

func (c *fakeClient) UpdateActionChangeStepNode(_ context.Context, _ int64, update casemgmt.StepNodeUpdate) error {
	c.nodeUpdates = append(c.nodeUpdates, update)
	return nil
}

func (c *fakeClient) GetParticipants(_ context.Context, _ int64) ([]casemgmt.Participant, error) {
	return nil, nil
}

func (c *fakeClient) GetPropertyParticipantID(_ context.Context, _ int64) (int64, error) {
	return 0, nil
}

func (c *fakeClient) RecomputeReadiness(_ context.Context, _ int64) error {
	return nil
}

var _ casemgmt.Client = (*fakeClient)(nil)

type fakeDocs struct {
	objects map[string][]byte
}

func (d *fakeDocs) Upload(_ context.Context, _, _, fileName, _ string, _ io.Reader, _ int64) (string, error) {
	return fileName, nil
}

func (d *fakeDocs) Download(_ context.Context, _, key string) (io.ReadCloser, int64, error) {
	data, ok := d.objects[key]
	if !ok {
		return nil, 0, fmt.Errorf("object %s not found", key)
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

func newPopulator(client *fakeClient, docs *fakeDocs, production bool) *Populator {
	if docs == nil {
		docs = &fakeDocs{}
	}
	return New(client, docs, logger.New("development"), production)
}

func TestParticipantsAppliedInDependencyOrder(t *testing.T) {
	client := &fakeClient{}
	p := newPopulator(client, nil, false)

	mp := domain.ManifestParticipants{
		Existing: []domain.ExistingParticipant{
			{Role: domain.RolePractitioner, ParticipantID: 555, TypeID: 106},
		},
		New: []domain.NewParticipant{
			{Role: domain.RoleClient, TypeID: 101, Name: domain.PersonName{First: "Jane", Last: "Citizen"}},
			{Role: domain.RoleAgent, TypeID: 104, IsCompany: true, CompanyName: "Acme Realty Pty Ltd"},
		},
		LinkMatter: []domain.ParticipantLink{
			{SourceRole: domain.RoleAgent, TargetRole: domain.RoleClient, TypeID: 201},
		},
	}

	var issues domain.Issues
	if err := p.Participants(context.Background(), 9001, mp, &issues); err != nil {
		t.Fatalf("Participants failed: %v", err)
	}

	if len(client.created) != 2 {
		t.Fatalf("expected 2 created participants, got %d", len(client.created))
	}
	if len(client.links) != 2 {
		t.Fatalf("expected existing link plus declared link, got %d links", len(client.links))
	}
	if client.links[0].ParticipantID != 555 {
		t.Fatalf("expected existing participant linked first, got %+v", client.links[0])
	}

	declared := client.links[1]
	if declared.TypeID != 201 || declared.TargetParticipantID == 0 {
		t.Fatalf("declared link not resolved against created participants: %+v", declared)
	}
	if issues.Len() != 0 {
		t.Fatalf("expected no issues, got %v", issues.Items())
	}
}

func TestParticipantsSkipsUnresolvedDeclaredLink(t *testing.T) {
	client := &fakeClient{}
	p := newPopulator(client, nil, false)

	mp := domain.ManifestParticipants{
		New: []domain.NewParticipant{
			{Role: domain.RoleClient, TypeID: 101, Name: domain.PersonName{First: "Jane", Last: "Citizen"}},
		},
		LinkMatter: []domain.ParticipantLink{
			{SourceRole: domain.RoleAgent, TargetRole: domain.RoleClient, TypeID: 201},
		},
	}

	var issues domain.Issues
	if err := p.Participants(context.Background(), 9001, mp, &issues); err != nil {
		t.Fatalf("Participants failed: %v", err)
	}
	if len(client.links) != 0 {
		t.Fatalf("expected unresolved declared link to be skipped, got %v", client.links)
	}
}

func TestParticipantsContinuePastLinkFailure(t *testing.T) {
	client := &fakeClient{failLinks: true}
	p := newPopulator(client, nil, false)

	mp := domain.ManifestParticipants{
		Existing: []domain.ExistingParticipant{
			{Role: domain.RolePractitioner, ParticipantID: 555, TypeID: 106},
		},
		New: []domain.NewParticipant{
			{Role: domain.RoleClient, TypeID: 101, Name: domain.PersonName{First: "Jane", Last: "Citizen"}},
		},
	}

	var issues domain.Issues
	if err := p.Participants(context.Background(), 9001, mp, &issues); err != nil {
		t.Fatalf("expected best-effort linking, got error: %v", err)
	}
	if len(client.created) != 1 {
		t.Fatalf("expected participant creation to proceed past link failure")
	}
	if issues.Len() == 0 {
		t.Fatalf("expected the failed link to be recorded as an issue")
	}
}

func TestDataCollectionsFailureIsFatal(t *testing.T) {
	client := &fakeClient{failCollection: true}
	p := newPopulator(client, nil, false)

	dc := domain.ManifestDataCollections{
		Prepare: []domain.CollectionValue{
			{Collection: "keydates", Field: "settlement_date", Value: "2026-09-12"},
		},
	}
	if err := p.DataCollections(context.Background(), 9001, dc); err == nil {
		t.Fatalf("expected collection failure to abort")
	}
}

func TestFilesSkipsFailedDocument(t *testing.T) {
	client := &fakeClient{failUploadName: "contract.pdf"}
	docs := &fakeDocs{objects: map[string][]byte{
		"a/contract.pdf": []byte("pdf-a"),
		"b/annexure.pdf": []byte("pdf-b"),
	}}
	p := newPopulator(client, docs, false)

	refs := []domain.DocumentRef{
		{Bucket: "source-documents", Key: "a/contract.pdf", Name: "contract.pdf", ContentType: "application/pdf"},
		{Bucket: "source-documents", Key: "b/annexure.pdf", Name: "annexure.pdf", ContentType: "application/pdf"},
	}
	if err := p.Files(context.Background(), 9001, refs); err != nil {
		t.Fatalf("Files failed: %v", err)
	}

	if len(client.uploads) != 1 || client.uploads[0] != "annexure.pdf" {
		t.Fatalf("expected only the healthy document uploaded, got %v", client.uploads)
	}
	if len(client.docLinks) != 1 {
		t.Fatalf("expected one document link, got %d", len(client.docLinks))
	}
}

func TestRenderIssuesFilenote(t *testing.T) {
	note := RenderIssuesFilenote([]domain.Issue{
		{Description: "phone number normalized"},
		{Description: "multiple lots named"},
	})

	if !strings.Contains(note, "1. phone number normalized") {
		t.Fatalf("expected numbered first issue, got:\n%s", note)
	}
	if !strings.Contains(note, "2. multiple lots named") {
		t.Fatalf("expected numbered second issue, got:\n%s", note)
	}
	if !strings.HasSuffix(note, issuesDisclaimer) {
		t.Fatalf("expected the disclaimer appended last, got:\n%s", note)
	}
}
