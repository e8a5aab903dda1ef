// Package domain holds the matter-creation pipeline's core types: the job
// and matter-create records, the manifest value object, the pipeline status
// state machine, and the issue accumulator.
package domain

import "fmt"

// Status is the pipeline cursor. A job only ever moves forward through the
// fixed sequence below; error-processing is reachable from any non-terminal
// status and hitl-rejected is only ever set by the review surface, never by
// the pipeline itself.
type Status string

const (
	StatusCreated         Status = "created"
	StatusInProgress      Status = "in-progress"
	StatusMatterCreated   Status = "matter-created"
	StatusParticipants    Status = "participants"
	StatusDataCollections Status = "data-collections"
	StatusFilenotes       Status = "filenotes"
	StatusFiles           Status = "files"
	StatusStepChange      Status = "stepchange"
	StatusCompleted       Status = "completed"
	StatusErrorProcessing Status = "error-processing"
	StatusHITLRejected    Status = "hitl-rejected"
)

// transitions is the only legal forward path. Anything not in this table is
// an illegal transition.
var transitions = map[Status]Status{
	StatusCreated:         StatusInProgress,
	StatusInProgress:      StatusMatterCreated,
	StatusMatterCreated:   StatusParticipants,
	StatusParticipants:    StatusDataCollections,
	StatusDataCollections: StatusFilenotes,
	StatusFilenotes:       StatusFiles,
	StatusFiles:           StatusStepChange,
	StatusStepChange:      StatusCompleted,
}

var knownStatuses = map[Status]struct{}{
	StatusCreated:         {},
	StatusInProgress:      {},
	StatusMatterCreated:   {},
	StatusParticipants:    {},
	StatusDataCollections: {},
	StatusFilenotes:       {},
	StatusFiles:           {},
	StatusStepChange:      {},
	StatusCompleted:       {},
	StatusErrorProcessing: {},
	StatusHITLRejected:    {},
}

// IsKnownStatus reports whether s is a member of the closed status set.
func IsKnownStatus(s Status) bool {
	_, ok := knownStatuses[s]
	return ok
}

// IsTerminal reports whether no further stage may run from s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusErrorProcessing || s == StatusHITLRejected
}

// Next returns the status that follows s on the forward path.
// Terminal statuses have no successor.
func Next(s Status) (Status, error) {
	next, ok := transitions[s]
	if !ok {
		return "", fmt.Errorf("no transition from status %q", s)
	}
	return next, nil
}

// Advance validates that current equals the stage's expected precondition
// and returns the successor. The equality check (not "already passed") is
// what makes duplicate and out-of-order delivery safe: a message arriving
// at any other status is treated as a replay, not an error.
func Advance(current, expected Status) (Status, bool, error) {
	if current != expected {
		return current, false, nil
	}
	next, err := Next(current)
	if err != nil {
		return current, false, err
	}
	return next, true, nil
}
