package notify

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender delivers notifications to an operator mailbox when no CRM
// callback URL is configured.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
	toEmail   string
}

// NewSMTPSender creates an SMTP-backed sender.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName, toEmail string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
		toEmail:   toEmail,
	}
}

// Send delivers one notification as a plain-text email.
func (s *SMTPSender) Send(ctx context.Context, n NotificationRequested) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(s.toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(fmt.Sprintf("Matter pipeline: %s (deal %s)", strings.Join(n.Events, ", "), n.DealID))
	msg.SetBodyString(gomail.TypeTextPlain, renderBody(n))

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func renderBody(n NotificationRequested) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tenant: %s\nDeal: %s\nEvents: %s\n", n.Tenant, n.DealID, strings.Join(n.Events, ", "))
	if len(n.Details) > 0 {
		b.WriteString("\nDetails:\n")
		keys := make([]string, 0, len(n.Details))
		for k := range n.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s: %s\n", k, n.Details[k])
		}
	}
	return b.String()
}
