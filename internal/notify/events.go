// Package notify delivers pipeline outcome notifications to the originating
// system. Delivery is fire-and-forget: stage handlers publish on the event
// bus and never wait for, or fail on, the callback.
package notify

import "matter_pipeline_backend/platform/events"

// Notification event names emitted by the pipeline.
const (
	EventMatterCompleted = "pipeline.matter.completed"
	EventMatterFailed    = "pipeline.matter.failed"
)

// NotificationRequested asks the dispatcher to deliver one notification to
// the originating system, addressed by CRM deal id.
type NotificationRequested struct {
	events.BaseEvent
	Tenant  string
	DealID  string
	Events  []string
	Details map[string]string
}

// EventName implements events.Event.
func (NotificationRequested) EventName() string {
	return "notify.requested"
}
