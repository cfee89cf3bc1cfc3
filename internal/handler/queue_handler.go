package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"github.com/orchids/devops-monitor/internal/queue"
	"github.com/orchids/devops-monitor/pkg/logger"
	"github.com/orchids/devops-monitor/pkg/response"
)

// QueueInspector is the subset of *asynq.Inspector the handler reads.
type QueueInspector interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
	Servers() ([]*asynq.ServerInfo, error)
}

var _ QueueInspector = (*asynq.Inspector)(nil)

// QueueHandler reports the state of the retrain queue and its workers.
type QueueHandler struct {
	inspector QueueInspector
	log       *logger.Logger
}

func NewQueueHandler(inspector QueueInspector, log *logger.Logger) *QueueHandler {
	return &QueueHandler{
		inspector: inspector,
		log:       log,
	}
}

func (h *QueueHandler) GetQueueStats(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.inspector.GetQueueInfo(queue.QueueDefault)
	if err != nil {
		h.log.Error(ctx, "failed to get queue stats", err, nil)
		response.InternalError(c, "Failed to retrieve queue statistics")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"queue":     stats.Queue,
		"active":    stats.Active,
		"pending":   stats.Pending,
		"scheduled": stats.Scheduled,
		"retry":     stats.Retry,
		"archived":  stats.Archived,
		"completed": stats.Completed,
		"processed": stats.Processed,
		"failed":    stats.Failed,
		"paused":    stats.Paused,
		"size":      stats.Size,
	})
}

func (h *QueueHandler) ListActiveWorkers(c *gin.Context) {
	ctx := c.Request.Context()

	workers, err := h.inspector.Servers()
	if err != nil {
		h.log.Error(ctx, "failed to list workers", err, nil)
		response.InternalError(c, "Failed to retrieve worker information")
		return
	}

	workerInfo := make([]gin.H, 0, len(workers))
	for _, worker := range workers {
		workerInfo = append(workerInfo, gin.H{
			"host":         worker.Host,
			"pid":          worker.PID,
			"server_id":    worker.ID,
			"concurrency":  worker.Concurrency,
			"queues":       worker.Queues,
			"started":      worker.Started,
			"active_tasks": len(worker.ActiveWorkers),
		})
	}

	response.Success(c, http.StatusOK, gin.H{
		"workers": workerInfo,
		"count":   len(workerInfo),
	})
}
