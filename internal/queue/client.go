package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/orchids/devops-monitor/internal/config"
	"github.com/orchids/devops-monitor/pkg/logger"
)

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// QueueClient hands retrain signals to the worker process through asynq.
type QueueClient struct {
	client enqueuer
	cfg    config.Monitor
	logger *logger.Logger
}

func NewQueueClient(redisOpt asynq.RedisClientOpt, cfg config.Monitor, logger *logger.Logger) *QueueClient {
	return &QueueClient{
		client: asynq.NewClient(redisOpt),
		cfg:    cfg,
		logger: logger,
	}
}

func (q *QueueClient) Close() error {
	return q.client.Close()
}

// Retrain enqueues one retrain task. While the previous period's task still holds
// its uniqueness lock the signal is skipped without error.
func (q *QueueClient) Retrain(ctx context.Context) error {
	task, err := NewModelRetrainTask(ModelRetrainPayload{
		Environment: string(q.cfg.Environment),
		ModelPath:   q.cfg.ModelPath,
		RequestedAt: time.Now().UTC(),
	})
	if err != nil {
		q.logger.Error(ctx, "failed to create model retrain task", err, nil)
		return fmt.Errorf("failed to create task: %w", err)
	}

	opts := []asynq.Option{
		asynq.MaxRetry(1),
		asynq.Timeout(q.cfg.RetrainInterval),
		asynq.Unique(q.cfg.RetrainInterval),
		asynq.Queue(QueueDefault),
	}

	info, err := q.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		q.logger.Debug(ctx, "model retrain task still pending, skipping", map[string]interface{}{
			"environment": q.cfg.Environment,
		})
		return nil
	}
	if err != nil {
		q.logger.Error(ctx, "failed to enqueue model retrain task", err, map[string]interface{}{
			"environment": q.cfg.Environment,
		})
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	q.logger.Info(ctx, "model retrain task enqueued", map[string]interface{}{
		"task_id": info.ID,
		"queue":   info.Queue,
	})

	return nil
}
