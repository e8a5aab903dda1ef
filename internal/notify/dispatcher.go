package notify

import (
	"context"
	"fmt"

	"matter_pipeline_backend/platform/config"
	"matter_pipeline_backend/platform/events"
	"matter_pipeline_backend/platform/logger"
)

// Sender delivers one notification over a concrete transport.
type Sender interface {
	Send(ctx context.Context, n NotificationRequested) error
}

// Dispatcher subscribes to notification requests on the event bus and hands
// them to the configured sender. Delivery failures are logged and dropped;
// the pipeline never retries notifications.
type Dispatcher struct {
	sender Sender
	log    *logger.Logger
}

// NewDispatcher picks the sender from configuration: the CRM callback when a
// URL is configured, the SMTP mailbox otherwise, a log-only fallback when
// neither is set.
func NewDispatcher(cfg config.NotifyConfig, log *logger.Logger) *Dispatcher {
	var sender Sender
	switch {
	case cfg.GetCRMCallbackURL() != "":
		sender = NewCRMSender(cfg.GetCRMCallbackURL(), cfg.GetCRMCallbackToken())
	case cfg.GetSMTPHost() != "" && cfg.GetNotifyEmailTo() != "":
		sender = NewSMTPSender(
			cfg.GetSMTPHost(), cfg.GetSMTPPort(),
			cfg.GetSMTPUsername(), cfg.GetSMTPPassword(),
			cfg.GetEmailFromAddress(), cfg.GetEmailFromName(),
			cfg.GetNotifyEmailTo(),
		)
	default:
		sender = logSender{log: log}
	}
	return &Dispatcher{sender: sender, log: log}
}

// Register subscribes the dispatcher on the bus.
func (d *Dispatcher) Register(bus events.Bus) {
	bus.Subscribe(NotificationRequested{}.EventName(), events.HandlerFunc(d.handle))
}

func (d *Dispatcher) handle(ctx context.Context, event events.Event) error {
	n, ok := event.(NotificationRequested)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	if err := d.sender.Send(ctx, n); err != nil {
		d.log.Error("notification delivery failed",
			"tenant", n.Tenant,
			"deal_id", n.DealID,
			"events", n.Events,
			"error", err,
		)
	}
	return nil
}

// logSender is the fallback when no delivery transport is configured.
type logSender struct {
	log *logger.Logger
}

func (s logSender) Send(_ context.Context, n NotificationRequested) error {
	s.log.Info("notification (no transport configured)",
		"tenant", n.Tenant,
		"deal_id", n.DealID,
		"events", n.Events,
		"details", n.Details,
	)
	return nil
}
