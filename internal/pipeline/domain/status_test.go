package domain

import "testing"

func TestNextFollowsFixedSequence(t *testing.T) {
	order := []Status{
		StatusCreated,
		StatusInProgress,
		StatusMatterCreated,
		StatusParticipants,
		StatusDataCollections,
		StatusFilenotes,
		StatusFiles,
		StatusStepChange,
		StatusCompleted,
	}

	for i := 0; i < len(order)-1; i++ {
		next, err := Next(order[i])
		if err != nil {
			t.Fatalf("Next(%s) returned error: %v", order[i], err)
		}
		if next != order[i+1] {
			t.Fatalf("Next(%s) = %s, want %s", order[i], next, order[i+1])
		}
	}
}

func TestNextRejectsTerminalStatuses(t *testing.T) {
	for _, s := range []Status{StatusCompleted, StatusErrorProcessing, StatusHITLRejected} {
		if _, err := Next(s); err == nil {
			t.Errorf("Next(%s) should fail for terminal status", s)
		}
	}
}

func TestAdvanceRequiresExactPrecondition(t *testing.T) {
	// Matching precondition advances.
	next, ok, err := Advance(StatusParticipants, StatusParticipants)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected advance when status equals precondition")
	}
	if next != StatusDataCollections {
		t.Fatalf("expected data-collections, got %s", next)
	}

	// A replayed message (status already past the precondition) is a no-op,
	// not an error.
	next, ok, err = Advance(StatusFilenotes, StatusParticipants)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("replay must not advance")
	}
	if next != StatusFilenotes {
		t.Fatalf("replay must keep current status, got %s", next)
	}
}

func TestMetaSetReplacesInPlace(t *testing.T) {
	var m Meta
	m.Set("state", "QLD")
	m.Set("online_conversion", "true")
	m.Set("state", "NSW")

	if len(m) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(m))
	}
	if m[0].Key != "state" || m[0].Value != "NSW" {
		t.Fatalf("expected state replaced in place, got %+v", m[0])
	}
	if !m.Bool("online_conversion") {
		t.Fatalf("expected online_conversion flag true")
	}
}
