package datasource

import (
	"context"
	"testing"
)

func TestCoalescingOverrideWins(t *testing.T) {
	primary := NewCRMSource(map[string]string{"client_name": "John Citizen"})
	override := NewWebhookSource(map[string]string{"client_name": "Jon Citizen"})

	src := NewCoalescing(primary, override)

	item, err := src.Get(context.Background(), "client_name")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Value != "Jon Citizen" {
		t.Fatalf("expected override value, got %q", item.Value)
	}
	if !item.Required {
		t.Fatalf("expected primary's required flag preserved")
	}
}

func TestCoalescingFallsBackToPrimary(t *testing.T) {
	primary := NewCRMSource(map[string]string{"settlement_date": "2026-10-01"})
	override := NewWebhookSource(map[string]string{})

	src := NewCoalescing(primary, override)

	item, err := src.Get(context.Background(), "settlement_date")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Value != "2026-10-01" {
		t.Fatalf("expected primary value, got %q", item.Value)
	}
}

func TestCoalescingEmptyEverywhereKeepsMetadata(t *testing.T) {
	src := NewCoalescing(NewCRMSource(nil), NewWebhookSource(nil))

	item, err := src.Get(context.Background(), "client_name")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Present() {
		t.Fatalf("expected empty item, got %q", item.Value)
	}
	if !item.Required {
		t.Fatalf("required flag must survive an empty coalesce")
	}
	if item.Type != "string" {
		t.Fatalf("type metadata must survive an empty coalesce, got %q", item.Type)
	}
}

func TestCoalescingRejectsUnknownField(t *testing.T) {
	src := NewCoalescing(NewCRMSource(nil), NewWebhookSource(nil))

	if _, err := src.Get(context.Background(), "favourite_colour"); err == nil {
		t.Fatalf("expected unknown reference field error")
	}
}
