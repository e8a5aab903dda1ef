package domain

// ParticipantRole is a closed tagged variant over the participant slots a
// manifest can populate. Each role carries the field-name prefix under which
// its source data lives in the data source.
type ParticipantRole string

const (
	RoleClient              ParticipantRole = "client"
	RoleClientTwo           ParticipantRole = "client_two"
	RoleOtherParty          ParticipantRole = "other_party"
	RoleOtherPartySolicitor ParticipantRole = "other_party_solicitor"
	RoleAgent               ParticipantRole = "agent"
	RoleDepositHolder       ParticipantRole = "deposit_holder"
	RoleProperty            ParticipantRole = "property"
	RolePractitioner        ParticipantRole = "practitioner"
	RoleFileOwner           ParticipantRole = "file_owner"
)

var roleFieldPrefixes = map[ParticipantRole]string{
	RoleClient:              "client",
	RoleClientTwo:           "client_2",
	RoleOtherParty:          "other_party",
	RoleOtherPartySolicitor: "other_party_solicitor",
	RoleAgent:               "agent",
	RoleDepositHolder:       "deposit_holder",
	RoleProperty:            "property",
	RolePractitioner:        "practitioner",
	RoleFileOwner:           "file_owner",
}

// FieldPrefix returns the data-source field prefix for the role, e.g.
// "other_party" yields fields like "other_party_name".
func (r ParticipantRole) FieldPrefix() string {
	return roleFieldPrefixes[r]
}

// Known reports whether r is a member of the closed role set.
func (r ParticipantRole) Known() bool {
	_, ok := roleFieldPrefixes[r]
	return ok
}

// PersonName is a parsed individual name.
type PersonName struct {
	First  string `json:"first"`
	Middle string `json:"middle,omitempty"`
	Last   string `json:"last"`
}

// NewParticipant is a participant to create on the matter.
type NewParticipant struct {
	Role        ParticipantRole `json:"role"`
	TypeID      int64           `json:"typeId"`
	IsCompany   bool            `json:"isCompany"`
	CompanyName string          `json:"companyName,omitempty"`
	Name        PersonName      `json:"name,omitempty"`
	Email       string          `json:"email,omitempty"`
	Phone       string          `json:"phone,omitempty"`
	Address     string          `json:"address,omitempty"`
}

// ExistingParticipant links an already-known participant id to the matter.
type ExistingParticipant struct {
	Role          ParticipantRole `json:"role"`
	ParticipantID int64           `json:"participantId"`
	TypeID        int64           `json:"typeId"`
}

// ParticipantLink declares a participant-to-participant relation to apply
// after the new participants exist (e.g. link agent to client).
type ParticipantLink struct {
	SourceRole ParticipantRole `json:"sourceRole"`
	TargetRole ParticipantRole `json:"targetRole"`
	TypeID     int64           `json:"typeId"`
}

// ManifestParticipants groups the participant work of a manifest.
type ManifestParticipants struct {
	Existing   []ExistingParticipant `json:"existing"`
	New        []NewParticipant      `json:"new"`
	LinkMatter []ParticipantLink     `json:"link_matter"`
}

// CollectionValue sets one field on an existing data-collection record.
type CollectionValue struct {
	Collection string `json:"collection"`
	Field      string `json:"field"`
	Value      string `json:"value"`
}

// CollectionRecord instantiates a data collection on the matter.
type CollectionRecord struct {
	Collection string            `json:"collection"`
	Values     map[string]string `json:"values,omitempty"`
}

// ManifestDataCollections groups collection work: records to create and
// field values to prepare on records that already exist.
type ManifestDataCollections struct {
	Prepare []CollectionValue  `json:"prepare"`
	Create  []CollectionRecord `json:"create"`
}

// Filenote is a note to attach to the matter.
type Filenote struct {
	Text string `json:"text"`
}

// Task is a task to create on the matter.
type Task struct {
	Name     string `json:"name"`
	Assignee string `json:"assignee,omitempty"`
}

// StepChange describes the workflow node the matter should be advanced to
// once population finishes. An empty TargetStep means no step change applies
// to this transaction.
type StepChange struct {
	TargetStep       string `json:"targetStep,omitempty"`
	NatureOfProperty string `json:"natureOfProperty,omitempty"`
}

// Manifest is the normalized intermediate representation of everything to
// populate on a matter. Built once per job and never recomputed.
type Manifest struct {
	Participants    ManifestParticipants    `json:"participants"`
	DataCollections ManifestDataCollections `json:"data_collections"`
	Filenotes       []Filenote              `json:"filenotes"`
	Tasks           []Task                  `json:"tasks"`
	Files           []DocumentRef           `json:"files"`
	Steps           StepChange              `json:"steps"`
	Meta            map[string]string       `json:"meta,omitempty"`
}

// NewParticipantsByRole returns the new participants carrying the given role.
func (m ManifestParticipants) NewParticipantsByRole(role ParticipantRole) []NewParticipant {
	var out []NewParticipant
	for _, p := range m.New {
		if p.Role == role {
			out = append(out, p)
		}
	}
	return out
}
