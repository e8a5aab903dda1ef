package notify

import (
	"context"
	"strings"
	"testing"

	"matter_pipeline_backend/platform/events"
)

type captureBus struct {
	published []events.Event
}

func (b *captureBus) Publish(_ context.Context, event events.Event) {
	b.published = append(b.published, event)
}

func (b *captureBus) PublishSync(_ context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *captureBus) Subscribe(string, events.Handler) {}

func TestBusNotifierPublishesRequest(t *testing.T) {
	bus := &captureBus{}
	n := NewBusNotifier(bus)

	n.Notify(context.Background(), "acme", "deal-9",
		[]string{EventMatterCompleted}, map[string]string{"matter_id": "9001"})

	if len(bus.published) != 1 {
		t.Fatalf("published %d events, want 1", len(bus.published))
	}
	req, ok := bus.published[0].(NotificationRequested)
	if !ok {
		t.Fatalf("published event is %T, want NotificationRequested", bus.published[0])
	}
	if req.Tenant != "acme" || req.DealID != "deal-9" {
		t.Errorf("unexpected request identity: tenant=%q deal=%q", req.Tenant, req.DealID)
	}
	if len(req.Events) != 1 || req.Events[0] != EventMatterCompleted {
		t.Errorf("unexpected events: %v", req.Events)
	}
	if req.Details["matter_id"] != "9001" {
		t.Errorf("unexpected details: %v", req.Details)
	}
}

func TestRenderBodySortsDetails(t *testing.T) {
	body := renderBody(NotificationRequested{
		Tenant: "acme",
		DealID: "deal-9",
		Events: []string{EventMatterFailed},
		Details: map[string]string{
			"stage":  "create-matter",
			"error":  "boom",
			"job_id": "j-1",
		},
	})

	if !strings.Contains(body, "Tenant: acme") || !strings.Contains(body, "Deal: deal-9") {
		t.Errorf("body missing identity lines:\n%s", body)
	}

	// Detail keys render alphabetically so repeated notifications diff cleanly.
	errIdx := strings.Index(body, "error:")
	jobIdx := strings.Index(body, "job_id:")
	stageIdx := strings.Index(body, "stage:")
	if errIdx == -1 || jobIdx == -1 || stageIdx == -1 {
		t.Fatalf("body missing detail lines:\n%s", body)
	}
	if !(errIdx < jobIdx && jobIdx < stageIdx) {
		t.Errorf("details not sorted:\n%s", body)
	}
}
