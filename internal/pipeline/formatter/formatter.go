package formatter

import (
	"context"
	"fmt"

	"matter_pipeline_backend/internal/pipeline/datasource"
	"matter_pipeline_backend/internal/pipeline/domain"
	"matter_pipeline_backend/platform/logger"
)

// Config is the tenant-scoped static mapping lookup (type ids, fees,
// collection ids). Lookups tagged with the transaction intent resolve
// intent-specific mappings.
type Config interface {
	Get(ctx context.Context, tenant, key string, tags ...string) (string, error)
}

// Formatter translates data-source values and configuration lookups into
// manifest fragments. Accessors are invoked by the builder in a fixed order;
// each returns a populated fragment or its zero value ("absent").
type Formatter interface {
	Participants(ctx context.Context) (domain.ManifestParticipants, error)
	DataCollections(ctx context.Context) (domain.ManifestDataCollections, error)
	Filenotes(ctx context.Context) ([]domain.Filenote, error)
	Tasks(ctx context.Context) ([]domain.Task, error)
	Files(ctx context.Context) ([]domain.DocumentRef, error)
	Steps(ctx context.Context) (domain.StepChange, error)
	Meta(ctx context.Context) (map[string]string, error)

	// Issues returns the non-fatal findings collected while formatting.
	Issues() []domain.Issue
}

// Deps carries everything a formatter variant needs.
type Deps struct {
	Source datasource.Source
	Config Config
	Job    *domain.Job
	File   *domain.File
	Log    *logger.Logger
}

// Factory builds a formatter variant for one job.
type Factory func(Deps) Formatter

var registry = map[string]Factory{}

// Register adds a formatter variant for a service type. Called from variant
// init functions; duplicate registration is a programmer error.
func Register(serviceType string, factory Factory) {
	if _, exists := registry[serviceType]; exists {
		panic(fmt.Sprintf("formatter already registered for service type %q", serviceType))
	}
	registry[serviceType] = factory
}

// New selects the variant for the job's service type.
func New(serviceType string, deps Deps) (Formatter, error) {
	factory, ok := registry[serviceType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownServiceType, serviceType)
	}
	return factory(deps), nil
}
