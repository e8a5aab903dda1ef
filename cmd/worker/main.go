package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"matter_pipeline_backend/internal/casemgmt"
	"matter_pipeline_backend/internal/configstore"
	"matter_pipeline_backend/internal/documents"
	"matter_pipeline_backend/internal/notify"
	"matter_pipeline_backend/internal/pipeline/builder"
	"matter_pipeline_backend/internal/pipeline/datasource"
	"matter_pipeline_backend/internal/pipeline/domain"
	"matter_pipeline_backend/internal/pipeline/populator"
	"matter_pipeline_backend/internal/pipeline/repository"
	"matter_pipeline_backend/internal/pipeline/stages"
	"matter_pipeline_backend/internal/queue"
	"matter_pipeline_backend/platform/config"
	"matter_pipeline_backend/platform/db"
	"matter_pipeline_backend/platform/events"
	"matter_pipeline_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting pipeline worker", "env", cfg.Env, "queue", cfg.AsynqQueueName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Redis cache for the tenant configuration store
	redisOpt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		log.Error("failed to parse redis URL", "error", err)
		panic("failed to parse redis URL: " + err.Error())
	}
	cache := redis.NewClient(redisOpt)
	defer cache.Close()

	cfgStore := configstore.New(pool, cache, cfg.GetConfigCacheTTL(), log)
	if err := cfgStore.SeedFromFile(ctx, cfg.GetConfigSeedPath()); err != nil {
		log.Error("failed to seed configuration store", "error", err)
		panic("failed to seed configuration store: " + err.Error())
	}

	// Event bus carries completion and failure notifications to the dispatcher
	eventBus := events.NewInMemoryBus(log)
	dispatcher := notify.NewDispatcher(cfg, log)
	dispatcher.Register(eventBus)
	notifier := notify.NewBusNotifier(eventBus)

	// Case-management system client
	client := casemgmt.NewHTTPClient(cfg, log)

	// Object storage holding the inbound contract documents
	docs, err := documents.NewMinIOStore(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize document store", "error", err)
		panic("failed to initialize document store: " + err.Error())
	}

	// Queue client so each stage can enqueue its successor
	publisher, err := queue.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize queue client", "error", err)
		panic("failed to initialize queue client: " + err.Error())
	}
	defer publisher.Close()

	// ========================================================================
	// Pipeline Composition
	// ========================================================================

	repo := repository.New(pool)

	// Contract uploads read extracted fields with operator corrections layered
	// on top; CRM deals read the deal payload directly.
	sources := func(job *domain.Job, file *domain.File) datasource.Source {
		if len(file.Documents) > 0 {
			return datasource.NewCoalescing(
				datasource.NewExtractionSource(pool, job.Tenant, file.ID),
				datasource.NewCorrectionSource(pool, job.Tenant, file.ID),
			)
		}
		return datasource.NewCRMSource(file.DealPayload)
	}

	build := builder.New(repo, sources, cfgStore, log)
	populate := populator.New(client, docs, log, cfg.IsProduction())
	handlers := stages.New(repo, build, populate, client, cfgStore, notifier, publisher, log)

	worker, err := queue.NewWorker(cfg, log)
	if err != nil {
		log.Error("failed to initialize queue worker", "error", err)
		panic("failed to initialize queue worker: " + err.Error())
	}
	handlers.Register(worker)

	log.Info("pipeline worker running", "concurrency", cfg.AsynqConcurrency)
	worker.Run(ctx)
	log.Info("pipeline worker stopped")
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return fmt.Errorf("%s: %w", name, lastErr)
}
