package webhook

import (
	"net/http"
	"time"

	"matter_pipeline_backend/platform/httpkit"
	"matter_pipeline_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	errNoTenantContext = "no tenant context"
	errInvalidRequest  = "invalid request body"
	errValidation      = "validation error"
)

// Handler handles webhook HTTP requests.
type Handler struct {
	service *Service
	repo    *Repository
	val     *validator.Validator
}

// NewHandler creates a new webhook handler.
func NewHandler(service *Service, repo *Repository, val *validator.Validator) *Handler {
	return &Handler{service: service, repo: repo, val: val}
}

// ---- Deal Intake (public, API-key authenticated) ----

// IntakeRequest is the request body for a deal submission.
type IntakeRequest struct {
	DealID      string             `json:"dealId" validate:"required,min=1,max=100"`
	ServiceType string             `json:"serviceType" validate:"required,min=1,max=100"`
	Payload     map[string]string  `json:"payload" validate:"required"`
	Documents   []IntakeDocRequest `json:"documents" validate:"max=50,dive"`
}

// IntakeDocRequest is one base64-encoded document on a submission.
type IntakeDocRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	ContentType string `json:"contentType" validate:"max=100"`
	Content     string `json:"content" validate:"required"`
}

// IntakeResponse acknowledges an accepted submission.
type IntakeResponse struct {
	JobID  uuid.UUID `json:"jobId"`
	Status string    `json:"status"`
}

// HandleIntake processes an inbound deal submission.
// POST /api/v1/webhook/deals
// Authenticated via X-Webhook-API-Key header (set by middleware).
func (h *Handler) HandleIntake(c *gin.Context) {
	tenant := tenantFromContext(c)
	if tenant == "" {
		httpkit.Error(c, http.StatusUnauthorized, errNoTenantContext, nil)
		return
	}

	var req IntakeRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	sub := IntakeSubmission{
		DealID:      req.DealID,
		ServiceType: req.ServiceType,
		Payload:     req.Payload,
	}
	for _, d := range req.Documents {
		sub.Documents = append(sub.Documents, IntakeDocument{
			Name:        d.Name,
			ContentType: d.ContentType,
			Content:     d.Content,
		})
	}

	jobID, err := h.service.Intake(c.Request.Context(), tenant, sub)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Accepted(c, IntakeResponse{JobID: jobID, Status: "accepted"})
}

// ---- Admin API Key Management (JWT authenticated) ----

// CreateAPIKeyRequest is the request body for creating a new API key.
type CreateAPIKeyRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// APIKeyResponse is returned when listing or creating API keys.
type APIKeyResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	KeyPrefix string    `json:"keyPrefix"`
	IsActive  bool      `json:"isActive"`
	CreatedAt string    `json:"createdAt"`
}

// CreateAPIKeyResponse includes the plaintext key (shown only once).
type CreateAPIKeyResponse struct {
	APIKeyResponse
	Key string `json:"key"` // plaintext, shown only once
}

// HandleCreateAPIKey creates a new webhook API key.
// POST /api/v1/admin/webhook/keys
func (h *Handler) HandleCreateAPIKey(c *gin.Context) {
	var req CreateAPIKeyRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	tenant, ok := h.getTenant(c)
	if !ok {
		return
	}

	plaintext, hash, prefix, err := GenerateAPIKey()
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "failed to generate API key", nil)
		return
	}

	key, err := h.repo.Create(c.Request.Context(), tenant, req.Name, hash, prefix)
	if httpkit.HandleError(c, err) {
		return
	}

	c.JSON(http.StatusCreated, CreateAPIKeyResponse{
		APIKeyResponse: toAPIKeyResponse(key),
		Key:            plaintext,
	})
}

// HandleListAPIKeys lists all webhook API keys for the tenant.
// GET /api/v1/admin/webhook/keys
func (h *Handler) HandleListAPIKeys(c *gin.Context) {
	tenant, ok := h.getTenant(c)
	if !ok {
		return
	}

	keys, err := h.repo.ListByTenant(c.Request.Context(), tenant)
	if httpkit.HandleError(c, err) {
		return
	}

	result := make([]APIKeyResponse, len(keys))
	for i, k := range keys {
		result[i] = toAPIKeyResponse(k)
	}

	httpkit.OK(c, result)
}

// HandleRevokeAPIKey deactivates a webhook API key.
// DELETE /api/v1/admin/webhook/keys/:keyId
func (h *Handler) HandleRevokeAPIKey(c *gin.Context) {
	tenant, ok := h.getTenant(c)
	if !ok {
		return
	}

	keyID, err := uuid.Parse(c.Param("keyId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid key ID", nil)
		return
	}

	if err := h.repo.Revoke(c.Request.Context(), tenant, keyID); err != nil {
		if err == ErrAPIKeyNotFound {
			httpkit.Error(c, http.StatusNotFound, "API key not found", nil)
			return
		}
		httpkit.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "API key revoked"})
}

func toAPIKeyResponse(key APIKey) APIKeyResponse {
	return APIKeyResponse{
		ID:        key.ID,
		Name:      key.Name,
		KeyPrefix: key.KeyPrefix,
		IsActive:  key.IsActive,
		CreatedAt: key.CreatedAt.Format(time.RFC3339),
	}
}

func (h *Handler) getTenant(c *gin.Context) (string, bool) {
	tenant := httpkit.TenantFromContext(c)
	if tenant == "" {
		httpkit.Error(c, http.StatusForbidden, errNoTenantContext, nil)
		return "", false
	}
	return tenant, true
}

func (h *Handler) bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidRequest, err.Error())
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errValidation, err.Error())
		return false
	}
	return true
}
