package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orchids/devops-monitor/internal/domain"
	"github.com/orchids/devops-monitor/pkg/logger"
	"github.com/orchids/devops-monitor/pkg/response"
)

const PlaceholderText = "DevOps Simulator is running successfully after Git Merge!\n"

// LatestReporter yields the most recent tick report, false before the first tick.
type LatestReporter interface {
	Latest() (domain.TickReport, bool)
}

type StatusHandler struct {
	latest      LatestReporter
	environment string
	log         *logger.Logger
}

func NewStatusHandler(latest LatestReporter, environment string, log *logger.Logger) *StatusHandler {
	return &StatusHandler{
		latest:      latest,
		environment: environment,
		log:         log,
	}
}

func (h *StatusHandler) Root(c *gin.Context) {
	c.String(http.StatusOK, PlaceholderText)
}

func (h *StatusHandler) Health(c *gin.Context) {
	r, ok := h.latest.Latest()
	if !ok {
		response.ServiceUnavailable(c, "no health tick has completed yet")
		return
	}

	body := gin.H{
		"environment": h.environment,
		"status":      r.Verdict.Status,
		"tick_id":     r.Verdict.TickID,
		"timestamp":   r.Verdict.Timestamp,
		"checks":      r.Verdict.Checks,
		"alerts":      r.Verdict.Alerts,
		"snapshot":    r.Snapshot,
	}
	if r.Forecast != nil {
		body["forecast"] = r.Forecast
	}

	if r.Verdict.Status == domain.StatusAlert {
		response.Degraded(c, http.StatusServiceUnavailable, body)
		return
	}
	response.Success(c, http.StatusOK, body)
}

// Metrics exposes gatherer in the Prometheus text format.
func Metrics(gatherer prometheus.Gatherer) gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}
