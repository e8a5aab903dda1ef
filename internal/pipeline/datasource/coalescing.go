package datasource

import (
	"context"

	"matter_pipeline_backend/internal/pipeline/domain"
)

// Coalescing layers an override source (manual corrections) over a primary
// source (raw extraction). The override's value wins when present and
// non-empty; the primary's type/required metadata is always kept.
type Coalescing struct {
	primary  Source
	override Source
}

// NewCoalescing wraps primary with override.
func NewCoalescing(primary, override Source) *Coalescing {
	return &Coalescing{primary: primary, override: override}
}

// Get resolves name against the override first, falling back to the primary
// value. Unknown-field errors surface from the primary so both layers agree
// on the catalog.
func (c *Coalescing) Get(ctx context.Context, name string) (domain.DataItem, error) {
	item, err := c.primary.Get(ctx, name)
	if err != nil {
		return domain.DataItem{}, err
	}

	over, err := c.override.Get(ctx, name)
	if err != nil {
		return domain.DataItem{}, err
	}

	if over.Present() {
		item.Value = over.Value
	}
	return item, nil
}

var _ Source = (*Coalescing)(nil)
