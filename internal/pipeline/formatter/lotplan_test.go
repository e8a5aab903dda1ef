package formatter

import (
	"reflect"
	"testing"
)

func TestExtractLots(t *testing.T) {
	text := "Property includes Lot 123, L456, lot no. 789, and Lot Number 101"

	got := ExtractLots(text)
	want := []string{"123", "456", "789", "101"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractLots = %v, want %v", got, want)
	}
}

func TestExtractLotsNone(t *testing.T) {
	if got := ExtractLots("no property description supplied"); len(got) != 0 {
		t.Fatalf("expected no lots, got %v", got)
	}
}

func TestExtractPlansSpecialPrefix(t *testing.T) {
	got := ExtractPlans("CPW12345")
	if len(got) != 1 {
		t.Fatalf("expected 1 plan, got %v", got)
	}
	if got[0].Type != "CP" || got[0].Number != "W12345" {
		t.Fatalf("expected CP/W12345, got %+v", got[0])
	}
}

func TestExtractPlansTypeOnly(t *testing.T) {
	got := ExtractPlans("SP,BUP,SP,GTP")
	if len(got) != 4 {
		t.Fatalf("expected 4 plans, got %v", got)
	}
	wantTypes := []string{"SP", "BUP", "SP", "GTP"}
	for i, p := range got {
		if p.Type != wantTypes[i] {
			t.Errorf("plan %d type = %q, want %q", i, p.Type, wantTypes[i])
		}
		if p.Number != "" {
			t.Errorf("plan %d number = %q, want empty", i, p.Number)
		}
	}
}

func TestExtractPlansTypedAndNumbered(t *testing.T) {
	got := ExtractPlans("Lot 7 on SP123456")
	if len(got) != 1 {
		t.Fatalf("expected 1 plan, got %v", got)
	}
	if got[0].Type != "SP" || got[0].Number != "123456" {
		t.Fatalf("expected SP/123456, got %+v", got[0])
	}
}

func TestExtractPlansOrphanNumber(t *testing.T) {
	got := ExtractPlans("Lot 2 on plan 98765")
	if len(got) != 1 {
		t.Fatalf("expected 1 plan, got %v", got)
	}
	if got[0].Type != "" || got[0].Number != "98765" {
		t.Fatalf("expected orphan number 98765, got %+v", got[0])
	}
}
