package webhook

import (
	"matter_pipeline_backend/internal/documents"
	"matter_pipeline_backend/internal/pipeline/repository"
	"matter_pipeline_backend/internal/queue"
	"matter_pipeline_backend/internal/server"
	"matter_pipeline_backend/platform/logger"
	"matter_pipeline_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the webhook bounded context module implementing server.Module.
type Module struct {
	handler *Handler
	repo    *Repository
}

// NewModule creates and initializes the webhook module with all its dependencies.
func NewModule(pool *pgxpool.Pool, pipelineRepo *repository.Repository, docs documents.Store, bucket string, publisher queue.Publisher, val *validator.Validator, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	service := NewService(pipelineRepo, docs, bucket, publisher, log)
	handler := NewHandler(service, repo, val)

	return &Module{
		handler: handler,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts webhook routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *server.RouterContext) {
	// Public intake endpoint (API key auth, no JWT)
	webhookGroup := ctx.V1.Group("/webhook")
	webhookGroup.Use(ctx.PublicRateLimiter.RateLimit())
	webhookGroup.Use(APIKeyAuthMiddleware(m.repo))
	webhookGroup.POST("/deals", m.handler.HandleIntake)

	// Admin API key management (JWT auth + admin role)
	adminGroup := ctx.Admin.Group("/webhook/keys")
	adminGroup.POST("", m.handler.HandleCreateAPIKey)
	adminGroup.GET("", m.handler.HandleListAPIKeys)
	adminGroup.DELETE("/:keyId", m.handler.HandleRevokeAPIKey)
}

// Compile-time check that Module implements server.Module
var _ server.Module = (*Module)(nil)
