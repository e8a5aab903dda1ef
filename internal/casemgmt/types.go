package casemgmt

import "io"

// Matter is a case in the external case-management system. The external
// system may create related records alongside the primary case; their ids
// are reported together so callers can persist all of them.
type Matter struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	RelatedIDs []int64 `json:"relatedIds,omitempty"`
}

// CreateMatterRequest opens a new matter.
type CreateMatterRequest struct {
	Name        string `json:"name"`
	ServiceType string `json:"serviceType"`
	Reference   string `json:"reference,omitempty"`
}

// NewParticipant creates a participant record on a matter.
type NewParticipant struct {
	MatterID    int64  `json:"matterId"`
	TypeID      int64  `json:"typeId"`
	IsCompany   bool   `json:"isCompany"`
	CompanyName string `json:"companyName,omitempty"`
	FirstName   string `json:"firstName,omitempty"`
	MiddleName  string `json:"middleName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
}

// ParticipantLink attaches a participant to a matter, or to another
// participant when TargetParticipantID is set.
type ParticipantLink struct {
	MatterID            int64 `json:"matterId"`
	ParticipantID       int64 `json:"participantId"`
	TypeID              int64 `json:"typeId"`
	TargetParticipantID int64 `json:"targetParticipantId,omitempty"`
}

// Participant is a participant record as reported by the external system.
type Participant struct {
	ID          int64  `json:"id"`
	TypeID      int64  `json:"typeId"`
	IsCompany   bool   `json:"isCompany"`
	CompanyName string `json:"companyName"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
}

// DocumentUpload streams one source document into the external system.
type DocumentUpload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ActionChangeStep is the workflow step graph of a matter: the named steps,
// the transition records between their nodes, the message and task templates
// a transition may carry forward, and the data fields a node exposes.
type ActionChangeStep struct {
	ID          int64        `json:"id"`
	Steps       []Step       `json:"steps"`
	Transitions []Transition `json:"transitions"`
	Tasks       []TaskRef    `json:"tasks"`
	DataFields  []DataField  `json:"dataFields"`
}

// Step names one workflow step and the node realizing it.
type Step struct {
	Name   string `json:"name"`
	NodeID int64  `json:"nodeId"`
}

// Transition is the record governing movement into a destination node.
type Transition struct {
	ToNodeID int64     `json:"toNodeId"`
	Messages []Message `json:"messages"`
	TaskIDs  []int64   `json:"taskIds"`
}

// Message is a workflow message template attached to a transition.
type Message struct {
	ID   int64  `json:"id"`
	Text string `json:"text,omitempty"`
}

// TaskRef identifies a task template known to the step graph.
type TaskRef struct {
	ID int64 `json:"id"`
}

// DataField is one data field exposed by the step graph, addressed by its
// group and label.
type DataField struct {
	ID    int64  `json:"id"`
	Group string `json:"group"`
	Label string `json:"label"`
}

// StepNodeUpdate moves a matter onto a node, carrying forward the permitted
// messages and tasks and any data-field values to set.
type StepNodeUpdate struct {
	NodeID      int64            `json:"nodeId"`
	Messages    []Message        `json:"messages,omitempty"`
	TaskIDs     []int64          `json:"taskIds,omitempty"`
	FieldValues map[int64]string `json:"fieldValues,omitempty"`
}
