package casemgmt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"matter_pipeline_backend/platform/config"
	"matter_pipeline_backend/platform/logger"
)

// HTTPClient is the bearer-token HTTP implementation of Client.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *logger.Logger
}

// NewHTTPClient creates a Client against the configured case-management API.
func NewHTTPClient(cfg config.CaseManagementConfig, log *logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    cfg.GetCaseManagementBaseURL(),
		token:      cfg.GetCaseManagementToken(),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

func (c *HTTPClient) CreateMatter(ctx context.Context, req CreateMatterRequest) (*Matter, error) {
	var matter Matter
	if err := c.doJSON(ctx, http.MethodPost, "/api/matters", req, &matter); err != nil {
		return nil, fmt.Errorf("create matter: %w", err)
	}
	return &matter, nil
}

func (c *HTTPClient) UpdateAction(ctx context.Context, matterID int64, fields map[string]string) error {
	path := fmt.Sprintf("/api/matters/%d", matterID)
	if err := c.doJSON(ctx, http.MethodPatch, path, fields, nil); err != nil {
		return fmt.Errorf("update matter %d: %w", matterID, err)
	}
	return nil
}

func (c *HTTPClient) UpdateDataCollectionRecordValue(ctx context.Context, matterID int64, collection, field, value string) error {
	path := fmt.Sprintf("/api/matters/%d/collections/%s/values", matterID, collection)
	body := map[string]string{"field": field, "value": value}
	if err := c.doJSON(ctx, http.MethodPut, path, body, nil); err != nil {
		return fmt.Errorf("update collection %s.%s on matter %d: %w", collection, field, matterID, err)
	}
	return nil
}

func (c *HTTPClient) CreateParticipant(ctx context.Context, p NewParticipant) (int64, error) {
	path := fmt.Sprintf("/api/matters/%d/participants", p.MatterID)
	var resp struct {
		ID int64 `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, path, p, &resp); err != nil {
		return 0, fmt.Errorf("create participant: %w", err)
	}
	return resp.ID, nil
}

func (c *HTTPClient) LinkParticipant(ctx context.Context, link ParticipantLink) error {
	path := fmt.Sprintf("/api/matters/%d/participant-links", link.MatterID)
	if err := c.doJSON(ctx, http.MethodPost, path, link, nil); err != nil {
		return fmt.Errorf("link participant %d: %w", link.ParticipantID, err)
	}
	return nil
}

func (c *HTTPClient) CreateTask(ctx context.Context, matterID int64, name string) (int64, error) {
	path := fmt.Sprintf("/api/matters/%d/tasks", matterID)
	var resp struct {
		ID int64 `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, path, map[string]string{"name": name}, &resp); err != nil {
		return 0, fmt.Errorf("create task: %w", err)
	}
	return resp.ID, nil
}

func (c *HTTPClient) CreateFileNote(ctx context.Context, matterID int64, text string) error {
	path := fmt.Sprintf("/api/matters/%d/filenotes", matterID)
	if err := c.doJSON(ctx, http.MethodPost, path, map[string]string{"text": text}, nil); err != nil {
		return fmt.Errorf("create filenote: %w", err)
	}
	return nil
}

func (c *HTTPClient) UploadDocument(ctx context.Context, doc DocumentUpload) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/documents", doc.Body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", doc.ContentType)
	req.Header.Set("X-Document-Name", doc.Name)
	if doc.Size > 0 {
		req.ContentLength = doc.Size
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload document %s: %w", doc.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", c.statusError(resp)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	return out.ID, nil
}

func (c *HTTPClient) LinkDocumentToMatter(ctx context.Context, matterID int64, documentID, name string) error {
	path := fmt.Sprintf("/api/matters/%d/documents", matterID)
	body := map[string]string{"documentId": documentID, "name": name}
	if err := c.doJSON(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("link document %s: %w", documentID, err)
	}
	return nil
}

func (c *HTTPClient) GetActionChangeStep(ctx context.Context, matterID int64) (*ActionChangeStep, error) {
	path := fmt.Sprintf("/api/matters/%d/change-step", matterID)
	var graph ActionChangeStep
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &graph); err != nil {
		return nil, fmt.Errorf("get step graph for matter %d: %w", matterID, err)
	}
	return &graph, nil
}

func (c *HTTPClient) UpdateActionChangeStepNode(ctx context.Context, matterID int64, update StepNodeUpdate) error {
	path := fmt.Sprintf("/api/matters/%d/change-step/node", matterID)
	if err := c.doJSON(ctx, http.MethodPut, path, update, nil); err != nil {
		return fmt.Errorf("move matter %d to node %d: %w", matterID, update.NodeID, err)
	}
	return nil
}

func (c *HTTPClient) GetParticipants(ctx context.Context, matterID int64) ([]Participant, error) {
	path := fmt.Sprintf("/api/matters/%d/participants", matterID)
	var out []Participant
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("get participants for matter %d: %w", matterID, err)
	}
	return out, nil
}

func (c *HTTPClient) GetPropertyParticipantID(ctx context.Context, matterID int64) (int64, error) {
	path := fmt.Sprintf("/api/matters/%d/participants/property", matterID)
	var resp struct {
		ID int64 `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return 0, fmt.Errorf("get property participant for matter %d: %w", matterID, err)
	}
	return resp.ID, nil
}

func (c *HTTPClient) RecomputeReadiness(ctx context.Context, matterID int64) error {
	path := fmt.Sprintf("/api/matters/%d/readiness/recompute", matterID)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, nil); err != nil {
		return fmt.Errorf("recompute readiness for matter %d: %w", matterID, err)
	}
	return nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) statusError(resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("case management returned %s: %s", strconv.Itoa(resp.StatusCode), string(snippet))
}

var _ Client = (*HTTPClient)(nil)
