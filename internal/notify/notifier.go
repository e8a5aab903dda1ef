package notify

import (
	"context"

	"matter_pipeline_backend/platform/events"
)

// Notifier is the fire-and-forget notification sink consumed by the stage
// handlers. Implementations must never block the pipeline on delivery.
type Notifier interface {
	Notify(ctx context.Context, tenant, dealID string, eventNames []string, details map[string]string)
}

// BusNotifier publishes notification requests on the in-process event bus.
// The dispatcher subscribed there does the actual delivery asynchronously.
type BusNotifier struct {
	bus events.Bus
}

// NewBusNotifier creates a Notifier over the event bus.
func NewBusNotifier(bus events.Bus) *BusNotifier {
	return &BusNotifier{bus: bus}
}

func (n *BusNotifier) Notify(ctx context.Context, tenant, dealID string, eventNames []string, details map[string]string) {
	n.bus.Publish(ctx, NotificationRequested{
		BaseEvent: events.NewBaseEvent(),
		Tenant:    tenant,
		DealID:    dealID,
		Events:    eventNames,
		Details:   details,
	})
}

var _ Notifier = (*BusNotifier)(nil)
