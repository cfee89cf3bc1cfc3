package sampler

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"

	"github.com/orchids/devops-monitor/internal/domain"
	"github.com/orchids/devops-monitor/pkg/logger"
)

// Node-exporter queries. CPU, memory and disk come back as 0-1 ratios, traffic in bytes/sec.
const (
	CPUQuery     = `1 - avg(rate(node_cpu_seconds_total{mode="idle"}[5m]))`
	MemoryQuery  = `1 - sum(node_memory_MemAvailable_bytes) / sum(node_memory_MemTotal_bytes)`
	DiskQuery    = `1 - sum(node_filesystem_avail_bytes{mountpoint="/"}) / sum(node_filesystem_size_bytes{mountpoint="/"})`
	TrafficQuery = `sum(rate(node_network_receive_bytes_total[5m])) + sum(rate(node_network_transmit_bytes_total[5m]))`
)

type promQuery struct {
	metric domain.Metric
	query  string
	scale  float64
}

var promQueries = []promQuery{
	{domain.MetricCPU, CPUQuery, 100},
	{domain.MetricMemory, MemoryQuery, 100},
	{domain.MetricDisk, DiskQuery, 100},
	{domain.MetricTraffic, TrafficQuery, 1},
}

// PrometheusSource implements Source on top of the Prometheus HTTP API.
type PrometheusSource struct {
	client v1.API
	logger *logger.Logger
	now    func() time.Time
}

func NewPrometheusSource(promURL string, log *logger.Logger) (*PrometheusSource, error) {
	client, err := api.NewClient(api.Config{
		Address: promURL,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating Prometheus client: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}

	return &PrometheusSource{
		client: v1.NewAPI(client),
		logger: log,
		now:    time.Now,
	}, nil
}

func (p *PrometheusSource) Collect(ctx context.Context) (domain.MetricsSnapshot, error) {
	now := p.now()
	snap := domain.MetricsSnapshot{Timestamp: now}

	var lastErr error
	for _, q := range promQueries {
		value, err := p.queryScalar(ctx, q.query, now)
		if err != nil {
			lastErr = err
			p.logger.Debug(ctx, "prometheus query failed", map[string]interface{}{
				"metric": q.metric,
				"error":  err.Error(),
			})
			snap.MarkMissing(q.metric)
			continue
		}
		value *= q.scale

		switch q.metric {
		case domain.MetricCPU:
			snap.CPUPercent = value
		case domain.MetricMemory:
			snap.MemoryPercent = value
		case domain.MetricDisk:
			snap.DiskPercent = value
		case domain.MetricTraffic:
			snap.TrafficRate = value
		}
	}

	if snap.Unavailable() {
		return snap, fmt.Errorf("%w: %v", domain.ErrSampleUnavailable, lastErr)
	}
	return snap, nil
}

func (p *PrometheusSource) queryScalar(ctx context.Context, query string, ts time.Time) (float64, error) {
	result, warnings, err := p.client.Query(ctx, query, ts)
	if err != nil {
		return 0, fmt.Errorf("prometheus query error for %s: %w", query, err)
	}
	if len(warnings) > 0 {
		p.logger.Debug(ctx, "prometheus query warnings", map[string]interface{}{
			"query":    query,
			"warnings": []string(warnings),
		})
	}

	switch v := result.(type) {
	case model.Vector:
		if len(v) > 0 {
			return float64(v[0].Value), nil
		}
	case *model.Scalar:
		return float64(v.Value), nil
	}
	return 0, fmt.Errorf("prometheus query %s returned no data", query)
}
