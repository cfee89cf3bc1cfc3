package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/orchids/devops-monitor/pkg/logger"
)

type RouterDeps struct {
	Status   *StatusHandler
	Queue    *QueueHandler // nil when the retrain queue is not configured
	Gatherer prometheus.Gatherer
	Log      *logger.Logger
}

func NewRouter(d RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(d.Log))

	router.GET("/", d.Status.Root)
	router.GET("/health", d.Status.Health)
	if d.Gatherer != nil {
		router.GET("/metrics", Metrics(d.Gatherer))
	}

	if d.Queue != nil {
		admin := router.Group("/api/admin")
		{
			admin.GET("/queue/stats", d.Queue.GetQueueStats)
			admin.GET("/workers", d.Queue.ListActiveWorkers)
		}
	}

	return router
}
