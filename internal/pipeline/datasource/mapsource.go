package datasource

import (
	"context"

	"matter_pipeline_backend/internal/pipeline/domain"
)

// MapSource serves values from an in-memory map against the shared catalog.
// It backs both the CRM deal aggregate (the File's deal payload snapshot)
// and inbound webhook payloads.
type MapSource struct {
	catalog Catalog
	values  map[string]string
}

// NewCRMSource creates a source over a CRM deal payload snapshot.
func NewCRMSource(dealPayload map[string]string) *MapSource {
	return &MapSource{catalog: ReferenceFields, values: dealPayload}
}

// NewWebhookSource creates a source over an inbound webhook payload.
func NewWebhookSource(payload map[string]string) *MapSource {
	return &MapSource{catalog: ReferenceFields, values: payload}
}

func (s *MapSource) Get(_ context.Context, name string) (domain.DataItem, error) {
	return s.catalog.Item(name, s.values[name])
}

var _ Source = (*MapSource)(nil)
