package scheduler

import (
	"context"

	"github.com/orchids/devops-monitor/internal/config"
	"github.com/orchids/devops-monitor/pkg/logger"
)

// LogRetrainer is the retrainer used when no queue is configured.
type LogRetrainer struct {
	cfg    config.Monitor
	logger *logger.Logger
}

func NewLogRetrainer(cfg config.Monitor, log *logger.Logger) *LogRetrainer {
	if log == nil {
		log = logger.Nop()
	}
	return &LogRetrainer{cfg: cfg, logger: log}
}

func (r *LogRetrainer) Retrain(ctx context.Context) error {
	r.logger.Info(ctx, "AI model: retraining on new data", map[string]interface{}{
		"model_path": r.cfg.ModelPath,
	})
	return nil
}
