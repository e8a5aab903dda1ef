// Package pipeline exposes the operator-facing HTTP surface for the matter
// creation pipeline: job status lookups and field corrections.
package pipeline

import (
	"net/http"
	"time"

	"matter_pipeline_backend/internal/pipeline/domain"
	"matter_pipeline_backend/internal/pipeline/repository"
	"matter_pipeline_backend/platform/apperr"
	"matter_pipeline_backend/platform/httpkit"
	"matter_pipeline_backend/platform/logger"
	"matter_pipeline_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles pipeline HTTP requests.
type Handler struct {
	repo *repository.Repository
	val  *validator.Validator
	log  *logger.Logger
}

// NewHandler creates a new pipeline handler.
func NewHandler(repo *repository.Repository, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{repo: repo, val: val, log: log}
}

// JobStatusResponse reports the current state of a pipeline job.
type JobStatusResponse struct {
	JobID       uuid.UUID      `json:"jobId"`
	FileID      uuid.UUID      `json:"fileId"`
	DealID      string         `json:"dealId"`
	ServiceType string         `json:"serviceType"`
	Status      string         `json:"status"`
	MatterIDs   []int64        `json:"matterIds"`
	ErrorReason string         `json:"errorReason,omitempty"`
	Issues      []domain.Issue `json:"issues,omitempty"`
	CompletedOn *string        `json:"completedOn,omitempty"`
	CreatedAt   string         `json:"createdAt"`
	UpdatedAt   string         `json:"updatedAt"`
}

// HandleGetJob returns the status of a pipeline job.
// GET /api/v1/pipeline/jobs/:jobId
func (h *Handler) HandleGetJob(c *gin.Context) {
	tenant, ok := h.getTenant(c)
	if !ok {
		return
	}

	jobID, err := uuid.Parse(c.Param("jobId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid job ID", nil)
		return
	}

	job, err := h.repo.GetJob(c.Request.Context(), tenant, jobID)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := JobStatusResponse{
		JobID:       job.ID,
		FileID:      job.FileID,
		ServiceType: job.ServiceType,
		Status:      string(job.Status),
		MatterIDs:   job.MatterIDs,
		ErrorReason: job.ErrorReason,
		CreatedAt:   job.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   job.UpdatedAt.Format(time.RFC3339),
	}
	if job.CompletedOn != nil {
		completed := job.CompletedOn.Format(time.RFC3339)
		resp.CompletedOn = &completed
	}

	if file, err := h.repo.GetFile(c.Request.Context(), tenant, job.FileID); err == nil {
		resp.DealID = file.DealID
	}

	mc, err := h.repo.GetMatterCreateByJob(c.Request.Context(), tenant, job.ID)
	switch {
	case err == nil:
		resp.Issues = mc.Issues
	case apperr.Is(err, apperr.KindNotFound):
		// matter not created yet
	default:
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, resp)
}

// CorrectionRequest is the request body for recording a field correction.
type CorrectionRequest struct {
	Field string `json:"field" validate:"required,min=1,max=200"`
	Value string `json:"value" validate:"max=10000"`
}

// HandleCreateCorrection records an operator correction for an extracted field.
// Corrections are append-only; the latest correction per field wins when the
// file is reprocessed.
// POST /api/v1/pipeline/files/:fileId/corrections
func (h *Handler) HandleCreateCorrection(c *gin.Context) {
	tenant, ok := h.getTenant(c)
	if !ok {
		return
	}

	fileID, err := uuid.Parse(c.Param("fileId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid file ID", nil)
		return
	}

	var req CorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.val.Struct(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	// Reject corrections for files that do not exist in this tenant.
	if _, err := h.repo.GetFile(c.Request.Context(), tenant, fileID); httpkit.HandleError(c, err) {
		return
	}

	author, _ := c.Get(httpkit.ContextUserIDKey)
	authorID, _ := author.(string)

	if err := h.repo.InsertCorrection(c.Request.Context(), tenant, fileID, req.Field, req.Value, authorID); httpkit.HandleError(c, err) {
		return
	}

	h.log.Info("field correction recorded",
		"tenant", tenant, "file_id", fileID.String(), "field", req.Field, "author", authorID)
	httpkit.Created(c, gin.H{"message": "correction recorded"})
}

func (h *Handler) getTenant(c *gin.Context) (string, bool) {
	tenant := httpkit.TenantFromContext(c)
	if tenant == "" {
		httpkit.Error(c, http.StatusForbidden, "no tenant context", nil)
		return "", false
	}
	return tenant, true
}
