package queue

import (
	"context"
	"fmt"

	"matter_pipeline_backend/platform/config"
	"matter_pipeline_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// StageFunc processes one stage message.
type StageFunc func(ctx context.Context, msg Message) error

// Worker consumes stage tasks and dispatches them to registered handlers.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	log    *logger.Logger
}

// NewWorker creates the asynq worker for the pipeline queue.
func NewWorker(cfg config.SchedulerConfig, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	return &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
		log:    log,
	}, nil
}

// Handle registers the stage handler for a route.
func (w *Worker) Handle(route string, fn StageFunc) {
	w.mux.HandleFunc(route, func(ctx context.Context, task *asynq.Task) error {
		msg, err := ParseMessage(task)
		if err != nil {
			return err
		}
		return fn(ctx, msg)
	})
}

// Run serves tasks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("pipeline worker stopped", "error", err)
	}
}
