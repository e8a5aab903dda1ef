package builder

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"matter_pipeline_backend/internal/pipeline/datasource"
	"matter_pipeline_backend/internal/pipeline/domain"
	"matter_pipeline_backend/internal/pipeline/formatter"
	"matter_pipeline_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	job  *domain.Job
	file *domain.File
}

func (s *fakeStore) GetJob(_ context.Context, _ string, id uuid.UUID) (*domain.Job, error) {
	if s.job == nil || s.job.ID != id {
		return nil, fmt.Errorf("job %s not found", id)
	}
	return s.job, nil
}

func (s *fakeStore) GetFile(_ context.Context, _ string, id uuid.UUID) (*domain.File, error) {
	if s.file == nil || s.file.ID != id {
		return nil, fmt.Errorf("file %s not found", id)
	}
	return s.file, nil
}

type fakeConfig map[string]string

func (c fakeConfig) Get(_ context.Context, _, key string, _ ...string) (string, error) {
	if v, ok := c[key]; ok {
		return v, nil
	}
	return "", fmt.Errorf("config key %q not found", key)
}

func testConfig() fakeConfig {
	return fakeConfig{
		"participant_type.client":                "101",
		"participant_type.client_two":            "101",
		"participant_type.other_party":           "102",
		"participant_type.other_party_solicitor": "103",
		"participant_type.agent":                 "104",
		"participant_type.deposit_holder":        "105",
		"participant_type.practitioner":          "106",
		"participant_type.file_owner":            "107",
		"link_type.agent":                        "201",
		"link_type.other_party_solicitor":        "202",
		"link_type.deposit_holder":               "203",
		"step.matter_opened":                     "Matter Opened",
	}
}

func testJobAndFile(serviceType string) (*domain.Job, *domain.File) {
	fileID := uuid.New()
	job := &domain.Job{
		ID:          uuid.New(),
		Tenant:      "acme",
		FileID:      fileID,
		ServiceType: serviceType,
		Status:      domain.StatusInProgress,
	}
	file := &domain.File{ID: fileID, Tenant: "acme", DealID: "deal-1"}
	return job, file
}

func sourceFor(values map[string]string) SourceFactory {
	return func(_ *domain.Job, _ *domain.File) datasource.Source {
		return datasource.NewCRMSource(values)
	}
}

func TestBuildAssemblesManifest(t *testing.T) {
	job, file := testJobAndFile(formatter.ServiceTypeQLD)

	values := map[string]string{
		"transaction_type":       "buy",
		"state":                  "QLD",
		"client_name":            "Jane Citizen",
		"agent_name":             "Acme Realty Pty Ltd",
		"contract_date":          "2026-08-01",
		"settlement_date":        "2026-09-12",
		"purchase_price":         "$750,000",
		"property_street_number": "41",
		"property_street_name":   "Boundary",
		"property_street_type":   "Street",
		"property_description":   "Lot 7 on SP123456",
		"built_on":               "true",
	}

	b := New(&fakeStore{job: job, file: file}, sourceFor(values), testConfig(), logger.New("development"))

	result, err := b.Build(context.Background(), "acme", job.ID)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(result.Manifest.Participants.New) != 2 {
		t.Fatalf("expected 2 new participants, got %d", len(result.Manifest.Participants.New))
	}
	if len(result.Manifest.Participants.LinkMatter) != 1 {
		t.Fatalf("expected 1 declared link (agent to client), got %d", len(result.Manifest.Participants.LinkMatter))
	}
	if result.Manifest.Participants.LinkMatter[0].TypeID != 201 {
		t.Fatalf("expected agent link type 201, got %d", result.Manifest.Participants.LinkMatter[0].TypeID)
	}

	if result.Manifest.Steps.TargetStep != "Matter Opened" {
		t.Fatalf("expected step change to Matter Opened, got %q", result.Manifest.Steps.TargetStep)
	}
	if result.Manifest.Steps.NatureOfProperty != formatter.NatureDwelling {
		t.Fatalf("expected Dwelling, got %q", result.Manifest.Steps.NatureOfProperty)
	}

	var sawPrice bool
	for _, v := range result.Manifest.DataCollections.Prepare {
		if v.Field == "purchase_price" {
			sawPrice = true
			if v.Value != "750000" {
				t.Fatalf("expected sanitized price 750000, got %q", v.Value)
			}
		}
	}
	if !sawPrice {
		t.Fatalf("expected purchase_price collection value")
	}

	// The sanitized price substitution must have been recorded.
	var sawSanitizeIssue bool
	for _, issue := range result.Issues {
		if strings.Contains(issue.Description, "sanitized") {
			sawSanitizeIssue = true
		}
	}
	if !sawSanitizeIssue {
		t.Fatalf("expected a sanitization issue, got %v", result.Issues)
	}
}

func TestBuildUnknownServiceType(t *testing.T) {
	job, file := testJobAndFile("family-law")

	b := New(&fakeStore{job: job, file: file}, sourceFor(nil), testConfig(), logger.New("development"))

	if _, err := b.Build(context.Background(), "acme", job.ID); err == nil {
		t.Fatalf("expected unknown service type error")
	}
}

func TestBuildMissingJob(t *testing.T) {
	b := New(&fakeStore{}, sourceFor(nil), testConfig(), logger.New("development"))

	if _, err := b.Build(context.Background(), "acme", uuid.New()); err == nil {
		t.Fatalf("expected missing job error")
	}
}
