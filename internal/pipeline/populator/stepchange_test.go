package populator

import (
	"context"
	"testing"

	"matter_pipeline_backend/internal/casemgmt"
	"matter_pipeline_backend/internal/pipeline/domain"
)

func testGraph() *casemgmt.ActionChangeStep {
	return &casemgmt.ActionChangeStep{
		ID: 42,
		Steps: []casemgmt.Step{
			{Name: "File Opened", NodeID: 10},
			{Name: "Matter Opened", NodeID: 11},
		},
		Transitions: []casemgmt.Transition{
			{
				ToNodeID: 11,
				Messages: []casemgmt.Message{{ID: 501, Text: "Welcome letter"}},
				TaskIDs:  []int64{700, 999},
			},
		},
		Tasks: []casemgmt.TaskRef{{ID: 700}},
		DataFields: []casemgmt.DataField{
			{ID: 300, Group: "Conveyancing Details", Label: "Nature of Property"},
		},
	}
}

func TestStepChangeAdvancesNode(t *testing.T) {
	client := &fakeClient{graph: testGraph()}
	p := newPopulator(client, nil, true)

	nodeID, err := p.StepChange(context.Background(), 9001, domain.StepChange{
		TargetStep:       "Matter Opened",
		NatureOfProperty: "Dwelling",
	})
	if err != nil {
		t.Fatalf("StepChange failed: %v", err)
	}
	if nodeID != 11 {
		t.Fatalf("expected node 11, got %d", nodeID)
	}

	if len(client.nodeUpdates) != 1 {
		t.Fatalf("expected one node update, got %d", len(client.nodeUpdates))
	}
	update := client.nodeUpdates[0]

	if len(update.Messages) != 1 || update.Messages[0].Text != "Welcome letter" {
		t.Fatalf("expected message text carried in production, got %+v", update.Messages)
	}
	if len(update.TaskIDs) != 1 || update.TaskIDs[0] != 700 {
		t.Fatalf("expected unresolved task 999 dropped, got %v", update.TaskIDs)
	}
	if update.FieldValues[300] != "Dwelling" {
		t.Fatalf("expected nature of property set on field 300, got %v", update.FieldValues)
	}
}

func TestStepChangeBlanksMessageTextOutsideProduction(t *testing.T) {
	client := &fakeClient{graph: testGraph()}
	p := newPopulator(client, nil, false)

	if _, err := p.StepChange(context.Background(), 9001, domain.StepChange{TargetStep: "Matter Opened"}); err != nil {
		t.Fatalf("StepChange failed: %v", err)
	}

	update := client.nodeUpdates[0]
	if len(update.Messages) != 1 || update.Messages[0].Text != "" {
		t.Fatalf("expected message text blanked outside production, got %+v", update.Messages)
	}
	if update.Messages[0].ID != 501 {
		t.Fatalf("expected message id still carried, got %+v", update.Messages)
	}
}

func TestStepChangeMissingStepIsStructural(t *testing.T) {
	client := &fakeClient{graph: testGraph()}
	p := newPopulator(client, nil, false)

	if _, err := p.StepChange(context.Background(), 9001, domain.StepChange{TargetStep: "Settlement Booked"}); err == nil {
		t.Fatalf("expected missing step to fail")
	}
}

func TestStepChangeMissingTransitionIsStructural(t *testing.T) {
	client := &fakeClient{graph: testGraph()}
	p := newPopulator(client, nil, false)

	if _, err := p.StepChange(context.Background(), 9001, domain.StepChange{TargetStep: "File Opened"}); err == nil {
		t.Fatalf("expected missing transition to fail")
	}
}

func TestStepChangeEmptyTargetIsNoop(t *testing.T) {
	client := &fakeClient{}
	p := newPopulator(client, nil, false)

	nodeID, err := p.StepChange(context.Background(), 9001, domain.StepChange{})
	if err != nil {
		t.Fatalf("StepChange failed: %v", err)
	}
	if nodeID != 0 || len(client.nodeUpdates) != 0 {
		t.Fatalf("expected no-op when no target step applies")
	}
}
