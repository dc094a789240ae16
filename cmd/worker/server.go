package main

import (
	"context"

	"github.com/hibiken/asynq"

	"storefront-backend/internal/shared"
	"storefront-backend/pkg/container"
	"storefront-backend/pkg/logger"
)

// asynqServer wraps asynq.Server and reports a failed Run on errs
type asynqServer struct {
	*asynq.Server
	errs chan error
}

func setupAsynqServer(c *container.Container, handlers *HandlerRegistry) *asynqServer {
	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	srv := asynq.NewServer(
		c.Redis.AsynqOpt(),
		asynq.Config{
			Queues: map[string]int{
				shared.QueueCritical: 6,
				shared.QueueDefault:  3,
				shared.QueueLow:      1,
			},
			Concurrency: c.Config.Worker.Concurrency,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logger.Info("task failed", map[string]interface{}{
					"type":      task.Type(),
					"retried":   retried,
					"max_retry": maxRetry,
					"error":     err.Error(),
				})
			}),
		},
	)

	s := &asynqServer{Server: srv, errs: make(chan error, 1)}
	go func() {
		logger.Info("worker starting", map[string]interface{}{
			"concurrency": c.Config.Worker.Concurrency,
		})
		if err := srv.Run(mux); err != nil {
			s.errs <- err
		}
	}()

	return s
}

// Shutdown waits for in-flight tasks per asynq's ShutdownTimeout
func (s *asynqServer) Shutdown() {
	s.Server.Shutdown()
	logger.Info("worker stopped", nil)
}
