package queue

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/orchids/devops-monitor/pkg/logger"
)

// ModelRetrainHandler acknowledges retrain signals. There is no model behind it;
// it records that a retrain cycle ran.
type ModelRetrainHandler struct {
	logger *logger.Logger
}

func NewModelRetrainHandler(logger *logger.Logger) *ModelRetrainHandler {
	return &ModelRetrainHandler{
		logger: logger,
	}
}

func (h *ModelRetrainHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseModelRetrainPayload(task)
	if err != nil {
		h.logger.Error(ctx, "failed to parse model retrain payload", err, nil)
		return fmt.Errorf("parse payload: %w: %w", err, asynq.SkipRetry)
	}

	h.logger.Info(ctx, "AI model: retraining on new data", map[string]interface{}{
		"environment":  payload.Environment,
		"model_path":   payload.ModelPath,
		"requested_at": payload.RequestedAt,
	})

	return nil
}
