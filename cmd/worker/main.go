package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/orchids/devops-monitor/internal/config"
	"github.com/orchids/devops-monitor/internal/queue"
	"github.com/orchids/devops-monitor/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	log := logger.New(string(cfg.Monitor.Environment), cfg.LogLevel)
	log.Info(ctx, "Starting model retrain worker", map[string]interface{}{
		"environment": cfg.Monitor.Environment,
		"concurrency": cfg.Worker.Concurrency,
		"redis":       cfg.Redis.Address(),
	})

	retrainHandler := queue.NewModelRetrainHandler(log)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Address(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
			Queues: map[string]int{
				queue.QueueDefault: 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Error(ctx, "task execution failed", err, map[string]interface{}{
					"task_type": task.Type(),
					"payload":   string(task.Payload()),
				})
			}),
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				return 30 * time.Second
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TypeModelRetrain, retrainHandler.ProcessTask)

	log.Info(ctx, "Worker server starting", map[string]interface{}{
		"concurrency": cfg.Worker.Concurrency,
	})
	if err := srv.Start(mux); err != nil {
		log.Fatal(ctx, "Worker server failed", err, nil)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info(ctx, "Shutting down worker server...", nil)

	srv.Shutdown()

	log.Info(ctx, "Worker server exited gracefully", nil)
}
