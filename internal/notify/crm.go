package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// CRMSender posts notifications back to the originating CRM webhook.
type CRMSender struct {
	url        string
	token      string
	httpClient *http.Client
}

// NewCRMSender creates a sender for the configured callback URL.
func NewCRMSender(url, token string) *CRMSender {
	return &CRMSender{
		url:        url,
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type crmCallback struct {
	Tenant  string            `json:"tenant"`
	DealID  string            `json:"dealId"`
	Events  []string          `json:"events"`
	Details map[string]string `json:"details,omitempty"`
}

// Send delivers one notification.
func (s *CRMSender) Send(ctx context.Context, n NotificationRequested) error {
	payload, err := json.Marshal(crmCallback{
		Tenant:  n.Tenant,
		DealID:  n.DealID,
		Events:  n.Events,
		Details: n.Details,
	})
	if err != nil {
		return fmt.Errorf("encode callback: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post crm callback: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("crm callback returned status %d", resp.StatusCode)
	}
	return nil
}
