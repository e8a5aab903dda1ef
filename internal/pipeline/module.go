package pipeline

import (
	"matter_pipeline_backend/internal/pipeline/repository"
	"matter_pipeline_backend/internal/server"
	"matter_pipeline_backend/platform/logger"
	"matter_pipeline_backend/platform/validator"
)

// Module is the pipeline bounded context module implementing server.Module.
type Module struct {
	handler *Handler
}

// NewModule creates and initializes the pipeline module.
func NewModule(repo *repository.Repository, val *validator.Validator, log *logger.Logger) *Module {
	return &Module{handler: NewHandler(repo, val, log)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "pipeline"
}

// RegisterRoutes mounts pipeline routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *server.RouterContext) {
	group := ctx.Protected.Group("/pipeline")
	group.GET("/jobs/:jobId", m.handler.HandleGetJob)
	group.POST("/files/:fileId/corrections", m.handler.HandleCreateCorrection)
}

// Compile-time check that Module implements server.Module
var _ server.Module = (*Module)(nil)
