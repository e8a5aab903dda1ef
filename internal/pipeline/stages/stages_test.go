package stages

import (
	"context"
	"errors"
	"strings"
	"testing"

	"matter_pipeline_backend/internal/casemgmt"
	"matter_pipeline_backend/internal/pipeline/builder"
	"matter_pipeline_backend/internal/pipeline/domain"
	"matter_pipeline_backend/internal/queue"
	"matter_pipeline_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	jobs      map[uuid.UUID]*domain.Job
	files     map[uuid.UUID]*domain.File
	creates   map[uuid.UUID]*domain.MatterCreate
	failedIDs []uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		jobs:    make(map[uuid.UUID]*domain.Job),
		files:   make(map[uuid.UUID]*domain.File),
		creates: make(map[uuid.UUID]*domain.MatterCreate),
	}
}

func (s *fakeStore) GetJob(_ context.Context, _ string, id uuid.UUID) (*domain.Job, error) {
	job, ok := s.jobs[id]
	if !ok {
		return nil, errors.New("job not found")
	}
	copied := *job
	return &copied, nil
}

func (s *fakeStore) GetFile(_ context.Context, _ string, id uuid.UUID) (*domain.File, error) {
	file, ok := s.files[id]
	if !ok {
		return nil, errors.New("file not found")
	}
	copied := *file
	return &copied, nil
}

func (s *fakeStore) UpdateJob(_ context.Context, job *domain.Job) error {
	copied := *job
	s.jobs[job.ID] = &copied
	return nil
}

func (s *fakeStore) UpdateJobStatus(_ context.Context, _ string, id uuid.UUID, status domain.Status) error {
	s.jobs[id].Status = status
	return nil
}

func (s *fakeStore) MarkJobFailed(_ context.Context, _ string, id uuid.UUID, reason string) error {
	s.jobs[id].Status = domain.StatusErrorProcessing
	s.jobs[id].ErrorReason = reason
	s.failedIDs = append(s.failedIDs, id)
	return nil
}

func (s *fakeStore) UpdateJobAndFile(_ context.Context, job *domain.Job, file *domain.File) error {
	j, f := *job, *file
	s.jobs[job.ID] = &j
	s.files[file.ID] = &f
	return nil
}

func (s *fakeStore) SetFileMatterID(_ context.Context, _ string, id uuid.UUID, matterID int64) error {
	s.files[id].MatterID = matterID
	return nil
}

func (s *fakeStore) CreateMatterCreate(_ context.Context, mc *domain.MatterCreate) error {
	copied := *mc
	s.creates[mc.JobID] = &copied
	return nil
}

func (s *fakeStore) GetMatterCreateByJob(_ context.Context, _ string, jobID uuid.UUID) (*domain.MatterCreate, error) {
	mc, ok := s.creates[jobID]
	if !ok {
		return nil, errors.New("matter create record not found")
	}
	copied := *mc
	return &copied, nil
}

func (s *fakeStore) UpdateMatterCreateStatus(_ context.Context, _ string, id uuid.UUID, status domain.Status, issues []domain.Issue) error {
	for _, mc := range s.creates {
		if mc.ID == id {
			mc.Status = status
			mc.Issues = issues
			return nil
		}
	}
	return errors.New("matter create record not found")
}

var _ Store = (*fakeStore)(nil)

type fakeBuilder struct {
	result *builder.Result
	calls  int
}

func (b *fakeBuilder) Build(_ context.Context, _ string, _ uuid.UUID) (*builder.Result, error) {
	b.calls++
	return b.result, nil
}

type fakePopulator struct {
	participantCalls int
	collectionCalls  int
	filenoteCalls    int
	fileCalls        int
	stepChanges      []domain.StepChange
	issueNotes       [][]domain.Issue

	collectionsErr error
}

func (p *fakePopulator) Participants(_ context.Context, _ int64, mp domain.ManifestParticipants, issues *domain.Issues) error {
	p.participantCalls++
	return nil
}

func (p *fakePopulator) DataCollections(_ context.Context, _ int64, _ domain.ManifestDataCollections) error {
	p.collectionCalls++
	return p.collectionsErr
}

func (p *fakePopulator) Filenotes(_ context.Context, _ int64, _ []domain.Filenote, _ []domain.Task) error {
	p.filenoteCalls++
	return nil
}

func (p *fakePopulator) Files(_ context.Context, _ int64, _ []domain.DocumentRef) error {
	p.fileCalls++
	return nil
}

func (p *fakePopulator) StepChange(_ context.Context, _ int64, change domain.StepChange) (int64, error) {
	p.stepChanges = append(p.stepChanges, change)
	return 11, nil
}

func (p *fakePopulator) IssuesFilenote(_ context.Context, _ int64, issues []domain.Issue) {
	p.issueNotes = append(p.issueNotes, issues)
}

type fakeNotifier struct {
	notifications []struct {
		dealID string
		events []string
	}
}

func (n *fakeNotifier) Notify(_ context.Context, _ string, dealID string, events []string, _ map[string]string) {
	n.notifications = append(n.notifications, struct {
		dealID string
		events []string
	}{dealID, events})
}

type fakePublisher struct {
	published []string
}

func (p *fakePublisher) Next(_ context.Context, route string, _ queue.Message) error {
	p.published = append(p.published, route)
	return nil
}

type fakeCaseClient struct {
	matter        *casemgmt.Matter
	actionUpdates []map[string]string
	readinessErr  error
}

func (c *fakeCaseClient) CreateMatter(_ context.Context, _ casemgmt.CreateMatterRequest) (*casemgmt.Matter, error) {
	return c.matter, nil
}

func (c *fakeCaseClient) UpdateAction(_ context.Context, _ int64, fields map[string]string) error {
	c.actionUpdates = append(c.actionUpdates, fields)
	return nil
}

func (c *fakeCaseClient) UpdateDataCollectionRecordValue(_ context.Context, _ int64, _, _, _ string) error {
	return nil
}

func (c *fakeCaseClient) CreateParticipant(_ context.Context, _ casemgmt.NewParticipant) (int64, error) {
	return 1, nil
}

func (c *fakeCaseClient) LinkParticipant(_ context.Context, _ casemgmt.ParticipantLink) error {
	return nil
}

func (c *fakeCaseClient) CreateTask(_ context.Context, _ int64, _ string) (int64, error) {
	return 1, nil
}

func (c *fakeCaseClient) CreateFileNote(_ context.Context, _ int64, _ string) error {
	return nil
}

func (c *fakeCaseClient) UploadDocument(_ context.Context, _ casemgmt.DocumentUpload) (string, error) {
	return "doc-1", nil
}

func (c *fakeCaseClient) LinkDocumentToMatter(_ context.Context, _ int64, _, _ string) error {
	return nil
}

func (c *fakeCaseClient) GetActionChangeStep(_ context.Context, _ int64) (*casemgmt.ActionChangeStep, error) {
	return &casemgmt.ActionChangeStep{}, nil
}

func (c *fakeCaseClient) UpdateActionChangeStepNode(_ context.Context, _ int64, _ casemgmt.StepNodeUpdate) error {
	return nil
}

func (c *fakeCaseClient) GetParticipants(_ context.Context, _ int64) ([]casemgmt.Participant, error) {
	return nil, nil
}

func (c *fakeCaseClient) GetPropertyParticipantID(_ context.Context, _ int64) (int64, error) {
	return 0, nil
}

func (c *fakeCaseClient) RecomputeReadiness(_ context.Context, _ int64) error {
	return c.readinessErr
}

var _ casemgmt.Client = (*fakeCaseClient)(nil)

type fakeConfig map[string]string

func (c fakeConfig) Get(_ context.Context, _, key string, _ ...string) (string, error) {
	if v, ok := c[key]; ok {
		return v, nil
	}
	return "", errors.New("config key not found")
}

type fixture struct {
	handlers  *Handlers
	store     *fakeStore
	builder   *fakeBuilder
	populator *fakePopulator
	notifier  *fakeNotifier
	publisher *fakePublisher
	client    *fakeCaseClient
	job       *domain.Job
	file      *domain.File
	msg       queue.Message
}

func newFixture(t *testing.T, status domain.Status) *fixture {
	t.Helper()

	store := newFakeStore()
	fileID, jobID := uuid.New(), uuid.New()

	job := &domain.Job{
		ID: jobID, Tenant: "acme", FileID: fileID,
		ServiceType: "conveyancing-qld", Status: status,
	}
	file := &domain.File{
		ID: fileID, Tenant: "acme", DealID: "deal-77",
		DealPayload: map[string]string{
			"practitioner_id": "106",
			"file_owner_id":   "107",
			"client_code":     "ctz",
		},
	}
	store.jobs[jobID] = job
	store.files[fileID] = file

	b := &fakeBuilder{result: &builder.Result{
		Manifest: domain.Manifest{
			Participants: domain.ManifestParticipants{
				New: []domain.NewParticipant{
					{Role: domain.RoleClient, TypeID: 101, Name: domain.PersonName{First: "Jane", Last: "Citizen"}},
					{Role: domain.RoleAgent, TypeID: 104, IsCompany: true, CompanyName: "Acme Realty Pty Ltd"},
				},
				Existing: []domain.ExistingParticipant{
					{Role: domain.RolePractitioner, ParticipantID: 555, TypeID: 106},
				},
				LinkMatter: []domain.ParticipantLink{
					{SourceRole: domain.RoleAgent, TargetRole: domain.RoleClient, TypeID: 201},
				},
			},
			Steps: domain.StepChange{TargetStep: "Matter Opened", NatureOfProperty: "Dwelling"},
			Meta:  map[string]string{"state": "QLD", "transaction_type": "buy", "nature_of_property": "Dwelling"},
		},
		Issues: []domain.Issue{{Description: "phone number normalized"}},
	}}

	populator := &fakePopulator{}
	notifier := &fakeNotifier{}
	publisher := &fakePublisher{}
	client := &fakeCaseClient{matter: &casemgmt.Matter{ID: 9001, RelatedIDs: []int64{9002}}}
	cfg := fakeConfig{
		"step.online_conversion":    "Online Conversion",
		"step.disclosure_statement": "Disclosure Statement Review",
	}

	handlers := New(store, b, populator, client, cfg, notifier, publisher, logger.New("development"))

	return &fixture{
		handlers: handlers, store: store, builder: b, populator: populator,
		notifier: notifier, publisher: publisher, client: client,
		job: job, file: file,
		msg: queue.Message{FileID: fileID.String(), JobID: jobID.String(), Tenant: "acme"},
	}
}

func (f *fixture) seedMatterCreate(subStatus domain.Status) *domain.MatterCreate {
	mc := &domain.MatterCreate{
		ID: uuid.New(), JobID: f.job.ID, Tenant: "acme", MatterID: 9001,
		Manifest: f.builder.result.Manifest,
		Status:   subStatus,
		Issues:   f.builder.result.Issues,
	}
	f.store.creates[f.job.ID] = mc
	return mc
}

func TestIntakeDerivesFlagsAndAdvances(t *testing.T) {
	f := newFixture(t, domain.StatusCreated)
	f.file.DealPayload["online_conversion"] = "true"

	if err := f.handlers.HandleIntake(context.Background(), f.msg); err != nil {
		t.Fatalf("HandleIntake failed: %v", err)
	}

	job := f.store.jobs[f.job.ID]
	if job.Status != domain.StatusInProgress {
		t.Fatalf("expected in-progress, got %s", job.Status)
	}
	if !job.Meta.Bool(FlagOnlineConversion) {
		t.Fatalf("expected online conversion flag on job meta, got %v", job.Meta)
	}
	if !f.store.files[f.file.ID].IntakeFlags[FlagOnlineConversion] {
		t.Fatalf("expected intake flags persisted on file")
	}
	if len(f.publisher.published) != 1 || f.publisher.published[0] != queue.TaskCreateMatter {
		t.Fatalf("expected create-matter published, got %v", f.publisher.published)
	}
}

func TestCreateMatterPersistsManifestOnce(t *testing.T) {
	f := newFixture(t, domain.StatusInProgress)

	if err := f.handlers.HandleCreateMatter(context.Background(), f.msg); err != nil {
		t.Fatalf("HandleCreateMatter failed: %v", err)
	}

	if f.builder.calls != 1 {
		t.Fatalf("expected one manifest build, got %d", f.builder.calls)
	}

	mc := f.store.creates[f.job.ID]
	if mc == nil || mc.MatterID != 9001 {
		t.Fatalf("expected matter create record for matter 9001, got %+v", mc)
	}
	if mc.Status != domain.StatusParticipants {
		t.Fatalf("expected sub-status participants, got %s", mc.Status)
	}

	job := f.store.jobs[f.job.ID]
	if job.Status != domain.StatusMatterCreated {
		t.Fatalf("expected matter-created, got %s", job.Status)
	}
	if len(job.MatterIDs) != 2 {
		t.Fatalf("expected primary and related matter ids, got %v", job.MatterIDs)
	}

	// Replay: a second delivery must not rebuild or recreate anything.
	if err := f.handlers.HandleCreateMatter(context.Background(), f.msg); err != nil {
		t.Fatalf("replayed HandleCreateMatter failed: %v", err)
	}
	if f.builder.calls != 1 {
		t.Fatalf("expected manifest built exactly once, got %d builds", f.builder.calls)
	}
	if len(f.publisher.published) != 2 {
		t.Fatalf("expected replay to still forward the next message, got %v", f.publisher.published)
	}
}

func TestParticipantsStageEndToEnd(t *testing.T) {
	f := newFixture(t, domain.StatusMatterCreated)
	f.seedMatterCreate(domain.StatusParticipants)

	if err := f.handlers.HandleParticipants(context.Background(), f.msg); err != nil {
		t.Fatalf("HandleParticipants failed: %v", err)
	}

	if f.populator.participantCalls != 1 {
		t.Fatalf("expected participants applied once, got %d", f.populator.participantCalls)
	}
	if len(f.populator.issueNotes) != 1 {
		t.Fatalf("expected the consolidated issues filenote, got %d", len(f.populator.issueNotes))
	}

	if got := f.store.creates[f.job.ID].Status; got != domain.StatusDataCollections {
		t.Fatalf("expected sub-status data-collections, got %s", got)
	}
	if got := f.store.jobs[f.job.ID].Status; got != domain.StatusParticipants {
		t.Fatalf("expected job status participants, got %s", got)
	}
	if len(f.publisher.published) != 1 || f.publisher.published[0] != queue.TaskDataCollections {
		t.Fatalf("expected data-collections published, got %v", f.publisher.published)
	}
}

func TestReplaySkipsSideEffectsButForwards(t *testing.T) {
	f := newFixture(t, domain.StatusFiles)
	f.seedMatterCreate(domain.StatusStepChange)

	// The participants message arrives long after its stage already ran.
	if err := f.handlers.HandleParticipants(context.Background(), f.msg); err != nil {
		t.Fatalf("HandleParticipants failed: %v", err)
	}

	if f.populator.participantCalls != 0 {
		t.Fatalf("expected no side effects on replay, got %d calls", f.populator.participantCalls)
	}
	if len(f.publisher.published) != 1 || f.publisher.published[0] != queue.TaskDataCollections {
		t.Fatalf("expected replay to still forward, got %v", f.publisher.published)
	}
}

func TestFailurePath(t *testing.T) {
	f := newFixture(t, domain.StatusParticipants)
	f.seedMatterCreate(domain.StatusDataCollections)
	f.populator.collectionsErr = errors.New("collection write refused")

	if err := f.handlers.HandleDataCollections(context.Background(), f.msg); err != nil {
		t.Fatalf("expected failure to be absorbed, got %v", err)
	}

	if len(f.notifier.notifications) != 1 {
		t.Fatalf("expected exactly one failure notification, got %d", len(f.notifier.notifications))
	}
	n := f.notifier.notifications[0]
	if n.dealID != "deal-77" || len(n.events) != 1 {
		t.Fatalf("unexpected notification %+v", n)
	}

	job := f.store.jobs[f.job.ID]
	if job.Status != domain.StatusErrorProcessing {
		t.Fatalf("expected error-processing, got %s", job.Status)
	}
	if job.ErrorReason == "" {
		t.Fatalf("expected serialized failure reason persisted")
	}
	if len(f.publisher.published) != 0 {
		t.Fatalf("expected no next stage after failure, got %v", f.publisher.published)
	}
}

func TestCompleteStage(t *testing.T) {
	f := newFixture(t, domain.StatusStepChange)
	f.seedMatterCreate(domain.StatusCompleted)
	f.job.Meta.Set("state", "QLD")
	f.job.Meta.Set("transaction_type", "buy")
	f.job.Meta.Set(FlagOnlineConversion, "true")
	f.store.jobs[f.job.ID] = f.job

	if err := f.handlers.HandleComplete(context.Background(), f.msg); err != nil {
		t.Fatalf("HandleComplete failed: %v", err)
	}

	if len(f.populator.stepChanges) != 1 || f.populator.stepChanges[0].TargetStep != "Online Conversion" {
		t.Fatalf("expected online-conversion sub-flow, got %v", f.populator.stepChanges)
	}

	if len(f.client.actionUpdates) != 1 {
		t.Fatalf("expected the display name set on the matter, got %d updates", len(f.client.actionUpdates))
	}
	name := f.client.actionUpdates[0]["name"]
	if !strings.HasPrefix(name, "QLD-BUY-106-107-CTZ-9001-") {
		t.Fatalf("unexpected display name %q", name)
	}

	job := f.store.jobs[f.job.ID]
	if job.Status != domain.StatusCompleted || job.CompletedOn == nil {
		t.Fatalf("expected completed job with timestamp, got %s %v", job.Status, job.CompletedOn)
	}

	if len(f.notifier.notifications) != 1 || f.notifier.notifications[0].events[0] != "pipeline.matter.completed" {
		t.Fatalf("expected completion notification, got %+v", f.notifier.notifications)
	}
	if len(f.publisher.published) != 0 {
		t.Fatalf("complete is the last stage, got %v", f.publisher.published)
	}
}

func TestCompleteSkipsNameWhenDelegated(t *testing.T) {
	f := newFixture(t, domain.StatusStepChange)
	f.seedMatterCreate(domain.StatusCompleted)
	f.job.Meta.Set(FlagAsyncNameRefresh, "true")
	f.store.jobs[f.job.ID] = f.job

	if err := f.handlers.HandleComplete(context.Background(), f.msg); err != nil {
		t.Fatalf("HandleComplete failed: %v", err)
	}

	if len(f.client.actionUpdates) != 0 {
		t.Fatalf("expected name assignment delegated, got %v", f.client.actionUpdates)
	}
}
