package report

import (
	"context"

	"github.com/orchids/devops-monitor/internal/domain"
	"github.com/orchids/devops-monitor/pkg/logger"
)

// LogSink emits one structured log line per tick.
type LogSink struct {
	logger *logger.Logger
}

func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{logger: log}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Report(ctx context.Context, r domain.TickReport) error {
	v := r.Verdict
	fields := map[string]interface{}{
		"status":         v.Status,
		"environment":    v.Environment,
		"cpu_percent":    r.Snapshot.CPUPercent,
		"memory_percent": r.Snapshot.MemoryPercent,
		"disk_percent":   r.Snapshot.DiskPercent,
		"traffic_rate":   r.Snapshot.TrafficRate,
		"checks":         v.Checks,
	}
	if len(r.Snapshot.Missing) > 0 {
		fields["missing"] = r.Snapshot.Missing
	}
	if r.Forecast != nil {
		fields["forecast"] = r.Forecast
	}

	if len(v.Alerts) > 0 {
		fields["alerts"] = v.Alerts
		s.logger.Warn(ctx, "health check completed with alerts", fields)
		return nil
	}

	s.logger.Info(ctx, "health check completed", fields)
	return nil
}
