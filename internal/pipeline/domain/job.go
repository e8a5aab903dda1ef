package domain

import (
	"time"

	"github.com/google/uuid"
)

// MetaEntry is one ordered key/value fact accumulated on a job across stages.
type MetaEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Meta is an ordered list of facts. Later writes for an existing key replace
// the value in place so the original ordering of discovery is preserved.
type Meta []MetaEntry

// Get returns the value for key and whether it was present.
func (m Meta) Get(key string) (string, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Set replaces the value for key in place, appending when absent.
func (m *Meta) Set(key, value string) {
	for i, e := range *m {
		if e.Key == key {
			(*m)[i].Value = value
			return
		}
	}
	*m = append(*m, MetaEntry{Key: key, Value: value})
}

// Bool reads a meta flag; absent or non-"true" values are false.
func (m Meta) Bool(key string) bool {
	v, _ := m.Get(key)
	return v == "true"
}

// Job is one pipeline instance. Created at intake, mutated by every stage,
// never deleted.
type Job struct {
	ID          uuid.UUID
	Tenant      string
	FileID      uuid.UUID
	ServiceType string
	Status      Status
	Meta        Meta
	MatterIDs   []int64
	ErrorReason string
	CompletedOn *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DocumentRef points at a source document held in object storage.
type DocumentRef struct {
	Bucket      string `json:"bucket"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
}

// File is the originating business case (CRM deal or uploaded contract).
// It carries the cross-system identifiers and the linked document references.
type File struct {
	ID          uuid.UUID
	Tenant      string
	DealID      string
	MatterID    int64
	ServiceType string
	DealPayload map[string]string
	Documents   []DocumentRef
	IntakeFlags map[string]bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
